// Package sqlparser turns a pkg/sqllex token stream into pkg/sqlast
// statement and expression trees: a recursive-descent grammar for
// statements with a precedence-climbing expression parser underneath.
package sqlparser

import (
	"strconv"
	"strings"

	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqllex"
	"pivotsql/pkg/sqlvalue"
)

// Parser holds a fully-tokenized input and a read cursor into it.
type Parser struct {
	tokens []sqllex.Token
	pos    int
}

// New returns a Parser over tokens, as produced by sqllex.Tokenize.
func New(tokens []sqllex.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes input and parses every statement it contains,
// separated by semicolons.
func Parse(input string) ([]sqlast.Statement, error) {
	toks, err := sqllex.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return New(toks).ParseAll()
}

// ParseOne tokenizes and parses a single statement, failing if input
// contains more than one.
func ParseOne(input string) (sqlast.Statement, error) {
	stmts, err := Parse(input)
	if err != nil {
		return nil, err
	}
	if len(stmts) != 1 {
		return nil, sqlerr.New(sqlerr.SQL, "expected exactly one statement, got %d", len(stmts))
	}
	return stmts[0], nil
}

// ParseAll parses every statement in the token stream.
func (p *Parser) ParseAll() ([]sqlast.Statement, error) {
	var stmts []sqlast.Statement
	for {
		p.skipSemicolons()
		if p.isEOF() {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipSemicolons()
	}
	return stmts, nil
}

func (p *Parser) skipSemicolons() {
	for p.peek().Type == sqllex.SEMICOLON {
		p.advance()
	}
}

func (p *Parser) peek() sqllex.Token {
	if p.pos >= len(p.tokens) {
		return sqllex.Token{Type: sqllex.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek2() sqllex.Token {
	if p.pos+1 >= len(p.tokens) {
		return sqllex.Token{Type: sqllex.EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() sqllex.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) isEOF() bool { return p.peek().Type == sqllex.EOF }

func (p *Parser) expect(tt sqllex.TokenType) error {
	if p.peek().Type == tt {
		p.advance()
		return nil
	}
	return sqlerr.New(sqlerr.SQL, "expected %s, got %s", tt, p.peek().Type)
}

// expectIdent consumes an identifier, also accepting a handful of
// keywords that double as identifiers in common usage (TABLE, INDEX,
// FILTER, VALUES).
func (p *Parser) expectIdent() (string, error) {
	tok := p.peek()
	switch tok.Type {
	case sqllex.IDENT:
		p.advance()
		return tok.Literal, nil
	case sqllex.TABLE:
		p.advance()
		return "table", nil
	case sqllex.INDEX:
		p.advance()
		return "index", nil
	case sqllex.FILTER:
		p.advance()
		return "filter", nil
	case sqllex.VALUES:
		p.advance()
		return "value", nil
	default:
		return "", sqlerr.New(sqlerr.SQL, "expected identifier, got %s", tok.Type)
	}
}

func (p *Parser) tryConsume(tt sqllex.TokenType) bool {
	if p.peek().Type == tt {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) parseStatement() (sqlast.Statement, error) {
	left, err := p.parsePrimaryStmt()
	if err != nil {
		return nil, err
	}
	return p.parseSetOp(left)
}

func (p *Parser) parsePrimaryStmt() (sqlast.Statement, error) {
	switch p.peek().Type {
	case sqllex.SELECT:
		return p.parseSelect()
	case sqllex.WITH:
		return p.parseWith()
	case sqllex.INSERT:
		return p.parseInsert()
	case sqllex.UPDATE:
		return p.parseUpdate()
	case sqllex.DELETE:
		return p.parseDelete()
	case sqllex.CREATE:
		return p.parseCreate()
	case sqllex.DROP:
		return p.parseDrop()
	case sqllex.BEGIN:
		p.advance()
		p.tryConsume(sqllex.TRANSACTION)
		return &sqlast.TransactionStatement{Kind: sqlast.Begin}, nil
	case sqllex.COMMIT:
		p.advance()
		p.tryConsume(sqllex.TRANSACTION)
		return &sqlast.TransactionStatement{Kind: sqlast.Commit}, nil
	case sqllex.ROLLBACK:
		p.advance()
		p.tryConsume(sqllex.TRANSACTION)
		return &sqlast.TransactionStatement{Kind: sqlast.Rollback}, nil
	case sqllex.EXPLAIN:
		p.advance()
		inner, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &sqlast.ExplainStatement{Stmt: inner}, nil
	case sqllex.LPAREN:
		p.advance()
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
		return stmt, nil
	default:
		return nil, sqlerr.New(sqlerr.SQL, "unexpected token: %s", p.peek().Type)
	}
}

func (p *Parser) parseSetOp(left sqlast.Statement) (sqlast.Statement, error) {
	var kind sqlast.SetOpKind
	switch p.peek().Type {
	case sqllex.UNION:
		kind = sqlast.Union
	case sqllex.INTERSECT:
		kind = sqlast.Intersect
	case sqllex.EXCEPT:
		kind = sqlast.Except
	default:
		return left, nil
	}
	p.advance()
	all := p.tryConsume(sqllex.ALL)
	right, err := p.parsePrimaryStmt()
	if err != nil {
		return nil, err
	}
	setOp := &sqlast.SetOpStatement{Op: kind, All: all, Left: left, Right: right}
	return p.parseSetOp(setOp)
}

func (p *Parser) parseWith() (sqlast.Statement, error) {
	if err := p.expect(sqllex.WITH); err != nil {
		return nil, err
	}
	p.tryConsume(sqllex.RECURSIVE)
	var ctes []sqlast.Cte
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.AS); err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.LPAREN); err != nil {
			return nil, err
		}
		query, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
		ctes = append(ctes, sqlast.Cte{Name: name, Query: query})
		if !p.tryConsume(sqllex.COMMA) {
			break
		}
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &sqlast.WithStatement{Ctes: ctes, Body: body}, nil
}

func (p *Parser) parseSelect() (sqlast.Statement, error) {
	if err := p.expect(sqllex.SELECT); err != nil {
		return nil, err
	}
	distinct := p.tryConsume(sqllex.DISTINCT)
	p.tryConsume(sqllex.ALL) // ALL is the default and carries no meaning

	columns, err := p.parseSelectItems()
	if err != nil {
		return nil, err
	}

	var from *sqlast.TableRef
	var joins []sqlast.Join
	if p.tryConsume(sqllex.FROM) {
		tr, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		from = tr
		joins, err = p.parseJoins()
		if err != nil {
			return nil, err
		}
	}

	var where sqlast.Expr
	if p.tryConsume(sqllex.WHERE) {
		where, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	var groupBy []sqlast.Expr
	if p.peek().Type == sqllex.GROUP && p.peek2().Type == sqllex.BY {
		p.advance()
		p.advance()
		groupBy, err = p.parseExprList()
		if err != nil {
			return nil, err
		}
	}

	var having sqlast.Expr
	if p.tryConsume(sqllex.HAVING) {
		having, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	var orderBy []sqlast.OrderByItem
	if p.peek().Type == sqllex.ORDER && p.peek2().Type == sqllex.BY {
		p.advance()
		p.advance()
		orderBy, err = p.parseOrderByItems()
		if err != nil {
			return nil, err
		}
	}

	var limit sqlast.Expr
	if p.tryConsume(sqllex.LIMIT) {
		limit, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	var offset sqlast.Expr
	if p.tryConsume(sqllex.OFFSET) {
		offset, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	return &sqlast.SelectStatement{
		Distinct: distinct,
		Columns:  columns,
		From:     from,
		Joins:    joins,
		Where:    where,
		GroupBy:  groupBy,
		Having:   having,
		OrderBy:  orderBy,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (p *Parser) parseSelectItems() ([]sqlast.SelectItem, error) {
	var items []sqlast.SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.tryConsume(sqllex.COMMA) {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseSelectItem() (sqlast.SelectItem, error) {
	if p.peek().Type == sqllex.STAR {
		p.advance()
		return sqlast.SelectItem{Wildcard: true}, nil
	}
	if p.peek().Type == sqllex.IDENT && p.peek2().Type == sqllex.DOT {
		save := p.pos
		name, err := p.expectIdent()
		if err == nil {
			p.advance() // dot
			if p.peek().Type == sqllex.STAR {
				p.advance()
				return sqlast.SelectItem{TableWildcard: name}, nil
			}
		}
		p.pos = save
	}
	expr, err := p.parseExpr()
	if err != nil {
		return sqlast.SelectItem{}, err
	}
	alias := p.parseAlias()
	return sqlast.SelectItem{Expr: expr, Alias: alias}, nil
}

// reservedForAlias lists keywords that cannot be consumed as a bare
// (AS-less) alias, since they introduce the next clause of a SELECT.
var reservedForAlias = map[sqllex.TokenType]bool{
	sqllex.FROM: true, sqllex.WHERE: true, sqllex.GROUP: true, sqllex.HAVING: true,
	sqllex.ORDER: true, sqllex.LIMIT: true, sqllex.OFFSET: true, sqllex.UNION: true,
	sqllex.INTERSECT: true, sqllex.EXCEPT: true, sqllex.COMMA: true, sqllex.RPAREN: true,
	sqllex.JOIN: true, sqllex.INNER: true, sqllex.LEFT: true, sqllex.RIGHT: true,
	sqllex.FULL: true, sqllex.CROSS: true, sqllex.ON: true, sqllex.USING: true,
	sqllex.SEMICOLON: true, sqllex.EOF: true, sqllex.WHEN: true, sqllex.THEN: true,
	sqllex.ELSE: true, sqllex.END: true,
}

func (p *Parser) parseAlias() string {
	if p.tryConsume(sqllex.AS) {
		switch p.peek().Type {
		case sqllex.IDENT, sqllex.STRING:
			tok := p.advance()
			return tok.Literal
		default:
			return ""
		}
	}
	if p.peek().Type == sqllex.IDENT && !reservedForAlias[p.peek().Type] {
		tok := p.advance()
		return tok.Literal
	}
	return ""
}

func (p *Parser) parseTableRef() (*sqlast.TableRef, error) {
	if p.peek().Type == sqllex.LPAREN {
		p.advance()
		query, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
		var alias string
		if p.tryConsume(sqllex.AS) {
			alias, err = p.expectIdent()
			if err != nil {
				return nil, err
			}
		} else {
			alias, _ = p.expectIdent()
			if alias == "" {
				alias = "subq"
			}
		}
		return &sqlast.TableRef{Subquery: query, Alias: alias}, nil
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	alias := p.parseAlias()
	return &sqlast.TableRef{TableName: name, Alias: alias}, nil
}

func (p *Parser) parseJoins() ([]sqlast.Join, error) {
	var joins []sqlast.Join
	for {
		var joinType sqlast.JoinType
		switch p.peek().Type {
		case sqllex.JOIN, sqllex.INNER:
			if p.peek().Type == sqllex.INNER {
				p.advance()
			}
			if err := p.expect(sqllex.JOIN); err != nil {
				return nil, err
			}
			joinType = sqlast.InnerJoin
		case sqllex.LEFT:
			p.advance()
			p.tryConsume(sqllex.OUTER)
			if err := p.expect(sqllex.JOIN); err != nil {
				return nil, err
			}
			joinType = sqlast.LeftJoin
		case sqllex.RIGHT:
			p.advance()
			p.tryConsume(sqllex.OUTER)
			if err := p.expect(sqllex.JOIN); err != nil {
				return nil, err
			}
			joinType = sqlast.RightJoin
		case sqllex.FULL:
			p.advance()
			p.tryConsume(sqllex.OUTER)
			if err := p.expect(sqllex.JOIN); err != nil {
				return nil, err
			}
			joinType = sqlast.FullJoin
		case sqllex.CROSS:
			p.advance()
			if err := p.expect(sqllex.JOIN); err != nil {
				return nil, err
			}
			joinType = sqlast.CrossJoin
		default:
			return joins, nil
		}
		table, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		var cond sqlast.JoinCondition
		if p.tryConsume(sqllex.ON) {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			cond = sqlast.JoinCondition{On: expr}
		} else if p.tryConsume(sqllex.USING) {
			if err := p.expect(sqllex.LPAREN); err != nil {
				return nil, err
			}
			var cols []string
			for {
				c, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				cols = append(cols, c)
				if !p.tryConsume(sqllex.COMMA) {
					break
				}
			}
			if err := p.expect(sqllex.RPAREN); err != nil {
				return nil, err
			}
			cond = sqlast.JoinCondition{Using: cols}
		} else {
			cond = sqlast.JoinCondition{None: true}
		}
		joins = append(joins, sqlast.Join{Type: joinType, Table: *table, Condition: cond})
	}
}

func (p *Parser) parseOrderByItems() ([]sqlast.OrderByItem, error) {
	var items []sqlast.OrderByItem
	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ascending := true
		switch p.peek().Type {
		case sqllex.ASC:
			p.advance()
		case sqllex.DESC:
			p.advance()
			ascending = false
		}
		var nullsFirst *bool
		if p.peek().Type == sqllex.NULLS {
			p.advance()
			switch p.peek().Type {
			case sqllex.FIRST:
				p.advance()
				v := true
				nullsFirst = &v
			case sqllex.LAST:
				p.advance()
				v := false
				nullsFirst = &v
			}
		}
		items = append(items, sqlast.OrderByItem{Expr: expr, Ascending: ascending, NullsFirst: nullsFirst})
		if !p.tryConsume(sqllex.COMMA) {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseInsert() (sqlast.Statement, error) {
	if err := p.expect(sqllex.INSERT); err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.INTO); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var columns []string
	if p.peek().Type == sqllex.LPAREN && p.peek2().Type != sqllex.SELECT {
		p.advance()
		for {
			c, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			columns = append(columns, c)
			if !p.tryConsume(sqllex.COMMA) {
				break
			}
		}
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
	}

	var values [][]sqlast.Expr
	var selectStmt sqlast.Statement
	if p.tryConsume(sqllex.VALUES) {
		for {
			if err := p.expect(sqllex.LPAREN); err != nil {
				return nil, err
			}
			row, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			if err := p.expect(sqllex.RPAREN); err != nil {
				return nil, err
			}
			values = append(values, row)
			if !p.tryConsume(sqllex.COMMA) {
				break
			}
		}
	} else {
		selectStmt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}

	return &sqlast.InsertStatement{Table: table, Columns: columns, Values: values, Select: selectStmt}, nil
}

func (p *Parser) parseUpdate() (sqlast.Statement, error) {
	if err := p.expect(sqllex.UPDATE); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	alias := p.parseAlias()
	if err := p.expect(sqllex.SET); err != nil {
		return nil, err
	}
	var assignments []sqlast.Assignment
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, sqlast.Assignment{Column: col, Value: val})
		if !p.tryConsume(sqllex.COMMA) {
			break
		}
	}
	var where sqlast.Expr
	if p.tryConsume(sqllex.WHERE) {
		where, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return &sqlast.UpdateStatement{Table: table, Alias: alias, Assignments: assignments, Where: where}, nil
}

func (p *Parser) parseDelete() (sqlast.Statement, error) {
	if err := p.expect(sqllex.DELETE); err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.FROM); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var where sqlast.Expr
	if p.tryConsume(sqllex.WHERE) {
		where, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return &sqlast.DeleteStatement{Table: table, Where: where}, nil
}

func (p *Parser) parseCreate() (sqlast.Statement, error) {
	if err := p.expect(sqllex.CREATE); err != nil {
		return nil, err
	}
	p.tryConsume(sqllex.TEMPORARY)
	p.tryConsume(sqllex.TEMP)
	if err := p.expect(sqllex.TABLE); err != nil {
		return nil, err
	}
	ifNotExists := false
	if p.peek().Type == sqllex.IF {
		p.advance()
		if err := p.expect(sqllex.NOT); err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.EXISTS); err != nil {
			return nil, err
		}
		ifNotExists = true
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.LPAREN); err != nil {
		return nil, err
	}
	columns, err := p.parseColumnDefs()
	if err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.RPAREN); err != nil {
		return nil, err
	}
	return &sqlast.CreateTableStatement{Name: name, IfNotExists: ifNotExists, Columns: columns}, nil
}

// tableConstraintStart names tokens that start a table-level constraint,
// which is skipped rather than modeled (no FK/check enforcement).
var tableConstraintStart = map[sqllex.TokenType]bool{
	sqllex.PRIMARY: true, sqllex.UNIQUE: true, sqllex.CONSTRAINT: true,
	sqllex.FOREIGN: true, sqllex.CHECK: true,
}

func (p *Parser) parseColumnDefs() ([]sqlast.ColumnDef, error) {
	var cols []sqlast.ColumnDef
	for {
		switch {
		case tableConstraintStart[p.peek().Type]:
			depth := 0
		skipConstraint:
			for {
				switch p.peek().Type {
				case sqllex.LPAREN:
					depth++
					p.advance()
				case sqllex.RPAREN:
					if depth == 0 {
						break skipConstraint
					}
					depth--
					p.advance()
				case sqllex.COMMA:
					if depth == 0 {
						break skipConstraint
					}
					p.advance()
				case sqllex.EOF:
					break skipConstraint
				default:
					p.advance()
				}
			}
		case p.peek().Type == sqllex.RPAREN || p.peek().Type == sqllex.EOF:
			return cols, nil
		default:
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
		if !p.tryConsume(sqllex.COMMA) {
			break
		}
	}
	return cols, nil
}

func (p *Parser) parseColumnDef() (sqlast.ColumnDef, error) {
	name, err := p.expectIdent()
	if err != nil {
		return sqlast.ColumnDef{}, err
	}
	dt, err := p.parseDataType()
	if err != nil {
		return sqlast.ColumnDef{}, err
	}
	nullable := true
	primaryKey := false
	var def sqlast.Expr
	for {
		switch p.peek().Type {
		case sqllex.NOT:
			p.advance()
			if err := p.expect(sqllex.NULL); err != nil {
				return sqlast.ColumnDef{}, err
			}
			nullable = false
		case sqllex.NULL:
			p.advance()
			nullable = true
		case sqllex.PRIMARY:
			p.advance()
			if err := p.expect(sqllex.KEY); err != nil {
				return sqlast.ColumnDef{}, err
			}
			primaryKey = true
			nullable = false
		case sqllex.UNIQUE:
			p.advance()
		case sqllex.DEFAULT:
			p.advance()
			def, err = p.parsePrimaryExpr()
			if err != nil {
				return sqlast.ColumnDef{}, err
			}
		case sqllex.REFERENCES:
			p.advance()
			p.advance() // referenced table name
			if p.peek().Type == sqllex.LPAREN {
				p.advance()
				for p.peek().Type != sqllex.RPAREN && !p.isEOF() {
					p.advance()
				}
				p.advance()
			}
		default:
			return sqlast.ColumnDef{Name: name, Type: dt, Nullable: nullable, PrimaryKey: primaryKey, Default: def}, nil
		}
	}
}

// dataTypeAliases maps every recognized type-name spelling to its base
// type; entries omitted from this table (e.g. unknown extension types)
// fall back to Utf8, matching a permissive dialect that never rejects an
// unfamiliar column type outright.
var dataTypeAliases = map[string]sqlvalue.BaseType{
	"INTEGER": sqlvalue.Int64, "INT": sqlvalue.Int64, "INT4": sqlvalue.Int64,
	"INT8": sqlvalue.Int64, "BIGINT": sqlvalue.Int64, "SMALLINT": sqlvalue.Int64,
	"TINYINT": sqlvalue.Int64, "HUGEINT": sqlvalue.Int64, "UBIGINT": sqlvalue.Int64,
	"UINT64": sqlvalue.Int64, "UINT32": sqlvalue.Int64, "UINT16": sqlvalue.Int64,
	"UINT8": sqlvalue.Int64,
	"FLOAT": sqlvalue.Float64, "REAL": sqlvalue.Float64, "FLOAT4": sqlvalue.Float64,
	"FLOAT8": sqlvalue.Float64, "DOUBLE": sqlvalue.Float64,
	"VARCHAR": sqlvalue.Utf8, "TEXT": sqlvalue.Utf8, "CHAR": sqlvalue.Utf8,
	"STRING": sqlvalue.Utf8, "BLOB": sqlvalue.Utf8, "BPCHAR": sqlvalue.Utf8,
	"CHARACTER": sqlvalue.Utf8, "VARYING": sqlvalue.Utf8,
	"BOOLEAN": sqlvalue.Boolean, "BOOL": sqlvalue.Boolean, "BIT": sqlvalue.Boolean,
	"DATE": sqlvalue.DateType,
	"TIMESTAMP": sqlvalue.TimestampType, "DATETIME": sqlvalue.TimestampType,
	"TIMESTAMPTZ": sqlvalue.TimestampType,
	"TIME":        sqlvalue.TimeType, "TIMETZ": sqlvalue.TimeType,
	"INTERVAL": sqlvalue.IntervalType,
	"DECIMAL":  sqlvalue.Decimal, "NUMERIC": sqlvalue.Decimal,
	"UUID": sqlvalue.Utf8, "GUID": sqlvalue.Utf8, "UNIQUEIDENTIFIER": sqlvalue.Utf8,
}

// typeNamesWithLengthSpec consume and discard an optional (n[,m])
// length/precision specifier that carries no semantic weight here.
var typeNamesWithLengthSpec = map[string]bool{
	"VARCHAR": true, "TEXT": true, "CHAR": true, "STRING": true, "BLOB": true,
	"BPCHAR": true, "CHARACTER": true, "VARYING": true,
	"TIMESTAMP": true, "DATETIME": true, "TIMESTAMPTZ": true,
}

func (p *Parser) parseDataType() (sqlvalue.DataType, error) {
	tok := p.peek()
	var name string
	switch tok.Type {
	case sqllex.IDENT:
		p.advance()
		name = strings.ToUpper(tok.Literal)
	case sqllex.INTEGER:
		p.advance()
		name = "INTEGER"
	case sqllex.INTERVAL:
		p.advance()
		name = "INTERVAL"
	default:
		return sqlvalue.DataType{}, sqlerr.New(sqlerr.SQL, "expected data type, got %s", tok.Type)
	}
	return p.parseDataTypeFromName(name)
}

func (p *Parser) parseDataTypeFromName(name string) (sqlvalue.DataType, error) {
	if name == "DECIMAL" || name == "NUMERIC" {
		precision, scale := 18, 2
		if p.peek().Type == sqllex.LPAREN {
			p.advance()
			if p.peek().Type == sqllex.INTEGER {
				n, _ := strconv.Atoi(p.advance().Literal)
				precision = n
			} else {
				p.advance()
			}
			scale = 0
			if p.tryConsume(sqllex.COMMA) {
				if p.peek().Type == sqllex.INTEGER {
					n, _ := strconv.Atoi(p.advance().Literal)
					scale = n
				} else {
					p.advance()
				}
			}
			if err := p.expect(sqllex.RPAREN); err != nil {
				return sqlvalue.DataType{}, err
			}
		}
		return sqlvalue.DataType{Base: sqlvalue.Decimal, Precision: precision, Scale: scale}, nil
	}
	if typeNamesWithLengthSpec[name] && p.peek().Type == sqllex.LPAREN {
		p.advance()
		for p.peek().Type != sqllex.RPAREN && !p.isEOF() {
			p.advance()
		}
		p.advance()
	}
	if base, ok := dataTypeAliases[name]; ok {
		return sqlvalue.DataType{Base: base}, nil
	}
	return sqlvalue.DataType{Base: sqlvalue.Utf8}, nil
}

func (p *Parser) parseDrop() (sqlast.Statement, error) {
	if err := p.expect(sqllex.DROP); err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.TABLE); err != nil {
		return nil, err
	}
	ifExists := false
	if p.peek().Type == sqllex.IF {
		p.advance()
		if err := p.expect(sqllex.EXISTS); err != nil {
			return nil, err
		}
		ifExists = true
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &sqlast.DropTableStatement{Name: name, IfExists: ifExists}, nil
}
