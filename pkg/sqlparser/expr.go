package sqlparser

import (
	"strconv"

	"pivotsql/pkg/sqlast"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqllex"
	"pivotsql/pkg/sqlvalue"
)

// Expression parsing climbs a fixed precedence ladder, one level per
// method, from OR (loosest) down through unary and postfix CAST
// (::type). Each level's loop pattern mirrors the others: parse the
// next-tighter level, then fold in same-precedence operators
// left-associatively.

// ParseExpr parses a single expression at the current position, exported
// for callers that need a standalone expression rather than a statement.
func (p *Parser) ParseExpr() (sqlast.Expr, error) { return p.parseExpr() }

func (p *Parser) parseExpr() (sqlast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (sqlast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == sqllex.OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &sqlast.BinaryExpr{Left: left, Op: sqlast.Or, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (sqlast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == sqllex.AND {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &sqlast.BinaryExpr{Left: left, Op: sqlast.And, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (sqlast.Expr, error) {
	if p.peek().Type == sqllex.NOT {
		p.advance()
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &sqlast.UnaryExpr{Op: sqlast.Not, Expr: expr}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (sqlast.Expr, error) {
	left, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	switch p.peek().Type {
	case sqllex.EQ, sqllex.NOTEQ, sqllex.LT, sqllex.GT, sqllex.LTEQ, sqllex.GTEQ:
		op := binOpFor(p.advance().Type)
		right, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		return &sqlast.BinaryExpr{Left: left, Op: op, Right: right}, nil

	case sqllex.IS:
		p.advance()
		negated := p.tryConsume(sqllex.NOT)
		if err := p.expect(sqllex.NULL); err != nil {
			return nil, err
		}
		return &sqlast.IsNullExpr{Expr: left, Negated: negated}, nil

	case sqllex.NOT:
		p.advance()
		switch p.peek().Type {
		case sqllex.IN:
			p.advance()
			return p.parseInExpr(left, true)
		case sqllex.LIKE:
			p.advance()
			pattern, err := p.parseAddition()
			if err != nil {
				return nil, err
			}
			return &sqlast.LikeExpr{Expr: left, Pattern: pattern, Negated: true}, nil
		case sqllex.ILIKE:
			p.advance()
			pattern, err := p.parseAddition()
			if err != nil {
				return nil, err
			}
			return &sqlast.LikeExpr{Expr: left, Pattern: pattern, Negated: true, CaseInsensitive: true}, nil
		case sqllex.BETWEEN:
			p.advance()
			low, err := p.parseAddition()
			if err != nil {
				return nil, err
			}
			if err := p.expect(sqllex.AND); err != nil {
				return nil, err
			}
			high, err := p.parseAddition()
			if err != nil {
				return nil, err
			}
			return &sqlast.BetweenExpr{Expr: left, Low: low, High: high, Negated: true}, nil
		default:
			return nil, sqlerr.New(sqlerr.SQL, "unexpected token after NOT: %s", p.peek().Type)
		}

	case sqllex.IN:
		p.advance()
		return p.parseInExpr(left, false)

	case sqllex.LIKE:
		p.advance()
		pattern, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		return &sqlast.LikeExpr{Expr: left, Pattern: pattern}, nil

	case sqllex.ILIKE:
		p.advance()
		pattern, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		return &sqlast.LikeExpr{Expr: left, Pattern: pattern, CaseInsensitive: true}, nil

	case sqllex.BETWEEN:
		p.advance()
		low, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.AND); err != nil {
			return nil, err
		}
		high, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		return &sqlast.BetweenExpr{Expr: left, Low: low, High: high}, nil

	default:
		return left, nil
	}
}

func binOpFor(tt sqllex.TokenType) sqlast.BinOp {
	switch tt {
	case sqllex.EQ:
		return sqlast.Eq
	case sqllex.NOTEQ:
		return sqlast.NotEq
	case sqllex.LT:
		return sqlast.Lt
	case sqllex.GT:
		return sqlast.Gt
	case sqllex.LTEQ:
		return sqlast.LtEq
	case sqllex.GTEQ:
		return sqlast.GtEq
	default:
		return sqlast.Eq
	}
}

func (p *Parser) parseInExpr(left sqlast.Expr, negated bool) (sqlast.Expr, error) {
	if err := p.expect(sqllex.LPAREN); err != nil {
		return nil, err
	}
	if p.peek().Type == sqllex.SELECT || p.peek().Type == sqllex.WITH {
		query, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
		return &sqlast.InSubqueryExpr{Expr: left, Query: query, Negated: negated}, nil
	}
	list, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.RPAREN); err != nil {
		return nil, err
	}
	return &sqlast.InListExpr{Expr: left, List: list, Negated: negated}, nil
}

func (p *Parser) parseAddition() (sqlast.Expr, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}
	for {
		var op sqlast.BinOp
		switch p.peek().Type {
		case sqllex.PLUS:
			op = sqlast.Add
		case sqllex.MINUS:
			op = sqlast.Sub
		case sqllex.CONCAT:
			op = sqlast.Concat
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &sqlast.BinaryExpr{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseMultiplication() (sqlast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op sqlast.BinOp
		switch p.peek().Type {
		case sqllex.STAR:
			op = sqlast.Mul
		case sqllex.SLASH:
			op = sqlast.Div
		case sqllex.PERCENT:
			op = sqlast.Mod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &sqlast.BinaryExpr{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseUnary() (sqlast.Expr, error) {
	if p.peek().Type == sqllex.MINUS {
		p.advance()
		expr, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return &sqlast.UnaryExpr{Op: sqlast.Neg, Expr: expr}, nil
	}
	p.tryConsume(sqllex.PLUS)
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (sqlast.Expr, error) {
	expr, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == sqllex.COLONCOLON {
		p.advance()
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		expr = &sqlast.CastExpr{Expr: expr, Type: dt}
	}
	return expr, nil
}

func (p *Parser) parsePrimaryExpr() (sqlast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case sqllex.INTEGER:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, sqlerr.New(sqlerr.SQL, "invalid integer literal %q", tok.Literal)
		}
		return &sqlast.Literal{Value: sqlvalue.Int(n)}, nil

	case sqllex.FLOAT:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, sqlerr.New(sqlerr.SQL, "invalid float literal %q", tok.Literal)
		}
		return &sqlast.Literal{Value: sqlvalue.Float(f)}, nil

	case sqllex.STRING:
		p.advance()
		return &sqlast.Literal{Value: sqlvalue.Text(tok.Literal)}, nil

	case sqllex.TRUE:
		p.advance()
		return &sqlast.Literal{Value: sqlvalue.Bool(true)}, nil

	case sqllex.FALSE:
		p.advance()
		return &sqlast.Literal{Value: sqlvalue.Bool(false)}, nil

	case sqllex.NULL:
		p.advance()
		return &sqlast.Literal{Value: sqlvalue.Null()}, nil

	case sqllex.STAR:
		p.advance()
		return &sqlast.WildcardExpr{}, nil

	case sqllex.INTERVAL:
		return p.parseIntervalLiteral()

	case sqllex.CAST:
		return p.parseCastExpr(false)

	case sqllex.CASE:
		return p.parseCaseExpr()

	case sqllex.EXISTS:
		p.advance()
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
		return &sqlast.ExistsExpr{Query: query}, nil

	case sqllex.NOT:
		p.advance()
		if p.peek().Type == sqllex.EXISTS {
			p.advance()
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
			return &sqlast.ExistsExpr{Query: query, Negated: true}, nil
		}
		expr, err := p.parsePrimaryExpr()
		if err != nil {
			return nil, err
		}
		return &sqlast.UnaryExpr{Op: sqlast.Not, Expr: expr}, nil

	case sqllex.LPAREN:
		p.advance()
		if p.peek().Type == sqllex.SELECT || p.peek().Type == sqllex.WITH {
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			if err := p.expect(sqllex.RPAREN); err != nil {
				return nil, err
			}
			return &sqlast.SubqueryExpr{Query: stmt}, nil
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case sqllex.IDENT, sqllex.ROW, sqllex.CURRENT:
		return p.parseIdentOrFunction()

	default:
		return nil, sqlerr.New(sqlerr.SQL, "unexpected token in expression: %s", tok.Type)
	}
}

func (p *Parser) parseIntervalLiteral() (sqlast.Expr, error) {
	p.advance() // INTERVAL
	tok := p.advance()
	var val string
	switch tok.Type {
	case sqllex.STRING:
		val = tok.Literal
	case sqllex.INTEGER:
		val = tok.Literal
	default:
		return nil, sqlerr.New(sqlerr.SQL, "expected interval value, got %s", tok.Type)
	}
	unit, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	iv, err := parseIntervalValue(val, unit)
	if err != nil {
		return nil, err
	}
	return &sqlast.Literal{Value: sqlvalue.IntervalVal(iv)}, nil
}

// parseIntervalValue turns an INTERVAL '<n>' <unit> literal into the
// four-field calendar interval: years, months and days each fill their
// own field, and hours, minutes and seconds collapse into the
// microsecond remainder.
func parseIntervalValue(val, unit string) (sqlvalue.Interval, error) {
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(val, 64)
		if ferr != nil {
			return sqlvalue.Interval{}, sqlerr.New(sqlerr.SQL, "invalid interval value %q", val)
		}
		n = int64(f)
	}
	switch upperUnit(unit) {
	case "YEAR", "YEARS":
		return sqlvalue.Interval{Years: n}, nil
	case "MONTH", "MONTHS":
		return sqlvalue.Interval{Months: n}, nil
	case "DAY", "DAYS":
		return sqlvalue.Interval{Days: n}, nil
	case "HOUR", "HOURS":
		return sqlvalue.Interval{Micros: n * 3600_000_000}, nil
	case "MINUTE", "MINUTES":
		return sqlvalue.Interval{Micros: n * 60_000_000}, nil
	case "SECOND", "SECONDS":
		return sqlvalue.Interval{Micros: n * 1_000_000}, nil
	default:
		return sqlvalue.Interval{}, sqlerr.New(sqlerr.SQL, "unknown interval unit %q", unit)
	}
}

func upperUnit(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func (p *Parser) parseCastExpr(try bool) (sqlast.Expr, error) {
	p.advance() // CAST or TRY_CAST
	if err := p.expect(sqllex.LPAREN); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.AS); err != nil {
		return nil, err
	}
	dt, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.RPAREN); err != nil {
		return nil, err
	}
	return &sqlast.CastExpr{Expr: expr, Type: dt, Try: try}, nil
}

func (p *Parser) parseCaseExpr() (sqlast.Expr, error) {
	p.advance() // CASE
	var operand sqlast.Expr
	if p.peek().Type != sqllex.WHEN {
		op, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		operand = op
	}
	var whens []sqlast.WhenClause
	for p.peek().Type == sqllex.WHEN {
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.THEN); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		whens = append(whens, sqlast.WhenClause{When: cond, Then: result})
	}
	var elseClause sqlast.Expr
	if p.tryConsume(sqllex.ELSE) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elseClause = e
	}
	if err := p.expect(sqllex.END); err != nil {
		return nil, err
	}
	return &sqlast.CaseExpr{Operand: operand, Whens: whens, Else: elseClause}, nil
}

func (p *Parser) parseIdentOrFunction() (sqlast.Expr, error) {
	tok := p.peek()
	var name string
	switch tok.Type {
	case sqllex.IDENT:
		p.advance()
		name = tok.Literal
	case sqllex.ROW:
		p.advance()
		name = "row"
	case sqllex.CURRENT:
		p.advance()
		name = "current"
	default:
		return nil, sqlerr.New(sqlerr.SQL, "expected identifier, got %s", tok.Type)
	}

	if p.peek().Type == sqllex.DOT {
		p.advance()
		if p.peek().Type == sqllex.STAR {
			p.advance()
			return &sqlast.WildcardExpr{}, nil
		}
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.peek().Type == sqllex.DOT {
			// schema.table.col: discard the schema qualifier.
			p.advance()
			col2, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			return &sqlast.ColumnRef{Table: col, Name: col2}, nil
		}
		return &sqlast.ColumnRef{Table: name, Name: col}, nil
	}

	if p.peek().Type == sqllex.LPAREN {
		return p.parseFunctionCall(name)
	}

	return &sqlast.ColumnRef{Name: name}, nil
}

func (p *Parser) parseFunctionCall(name string) (sqlast.Expr, error) {
	p.advance() // LPAREN

	if upperUnit(name) == "TRY_CAST" {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.AS); err != nil {
			return nil, err
		}
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
		return &sqlast.CastExpr{Expr: expr, Type: dt, Try: true}, nil
	}

	distinct := p.tryConsume(sqllex.DISTINCT)

	if upperUnit(name) == "COUNT" && p.peek().Type == sqllex.STAR {
		p.advance()
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
		over, err := p.parseOver()
		if err != nil {
			return nil, err
		}
		return &sqlast.FuncCall{Name: "COUNT", Args: []sqlast.Expr{&sqlast.WildcardExpr{}}, Over: over}, nil
	}

	var args []sqlast.Expr
	if p.peek().Type != sqllex.RPAREN {
		var err error
		args, err = p.parseExprList()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(sqllex.RPAREN); err != nil {
		return nil, err
	}

	if p.peek().Type == sqllex.FILTER {
		p.advance()
		if err := p.expect(sqllex.LPAREN); err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.WHERE); err != nil {
			return nil, err
		}
		if _, err := p.parseExpr(); err != nil {
			return nil, err
		}
		if err := p.expect(sqllex.RPAREN); err != nil {
			return nil, err
		}
	}

	over, err := p.parseOver()
	if err != nil {
		return nil, err
	}

	return &sqlast.FuncCall{Name: upperUnit(name), Args: args, Distinct: distinct, Over: over}, nil
}

func (p *Parser) parseOver() (*sqlast.WindowSpec, error) {
	if p.peek().Type != sqllex.OVER {
		return nil, nil
	}
	p.advance()

	if p.peek().Type == sqllex.IDENT && p.peek2().Type != sqllex.LPAREN {
		name := p.advance().Literal
		return &sqlast.WindowSpec{Name: name}, nil
	}

	if err := p.expect(sqllex.LPAREN); err != nil {
		return nil, err
	}
	var partitionBy []sqlast.Expr
	if p.peek().Type == sqllex.PARTITION && p.peek2().Type == sqllex.BY {
		p.advance()
		p.advance()
		var err error
		partitionBy, err = p.parseExprList()
		if err != nil {
			return nil, err
		}
	}
	var orderBy []sqlast.OrderByItem
	if p.peek().Type == sqllex.ORDER && p.peek2().Type == sqllex.BY {
		p.advance()
		p.advance()
		var err error
		orderBy, err = p.parseOrderByItems()
		if err != nil {
			return nil, err
		}
	}
	frame, err := p.parseWindowFrame()
	if err != nil {
		return nil, err
	}
	if err := p.expect(sqllex.RPAREN); err != nil {
		return nil, err
	}
	return &sqlast.WindowSpec{PartitionBy: partitionBy, OrderBy: orderBy, Frame: frame}, nil
}

func (p *Parser) parseWindowFrame() (*sqlast.WindowFrame, error) {
	var kind sqlast.WindowFrameKind
	switch p.peek().Type {
	case sqllex.ROWS:
		p.advance()
		kind = sqlast.FrameRows
	case sqllex.RANGE:
		p.advance()
		kind = sqlast.FrameRange
	default:
		return nil, nil
	}
	start, err := p.parseWindowFrameBound()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == sqllex.AND {
		p.advance()
		high, err := p.parseWindowFrameBound()
		if err != nil {
			return nil, err
		}
		return &sqlast.WindowFrame{Kind: kind, Start: start, End: &high}, nil
	}
	return &sqlast.WindowFrame{Kind: kind, Start: start}, nil
}

func (p *Parser) parseWindowFrameBound() (sqlast.WindowFrameBound, error) {
	switch p.peek().Type {
	case sqllex.UNBOUNDED:
		p.advance()
		switch p.peek().Type {
		case sqllex.PRECEDING:
			p.advance()
			return sqlast.WindowFrameBound{Kind: sqlast.UnboundedPreceding}, nil
		case sqllex.FOLLOWING:
			p.advance()
			return sqlast.WindowFrameBound{Kind: sqlast.UnboundedFollowing}, nil
		default:
			return sqlast.WindowFrameBound{Kind: sqlast.UnboundedPreceding}, nil
		}
	case sqllex.CURRENT:
		p.advance()
		if err := p.expect(sqllex.ROW); err != nil {
			return sqlast.WindowFrameBound{}, err
		}
		return sqlast.WindowFrameBound{Kind: sqlast.CurrentRow}, nil
	default:
		n, err := p.parseExpr()
		if err != nil {
			return sqlast.WindowFrameBound{}, err
		}
		switch p.peek().Type {
		case sqllex.PRECEDING:
			p.advance()
			return sqlast.WindowFrameBound{Kind: sqlast.Preceding, Offset: n}, nil
		case sqllex.FOLLOWING:
			p.advance()
			return sqlast.WindowFrameBound{Kind: sqlast.Following, Offset: n}, nil
		default:
			return sqlast.WindowFrameBound{Kind: sqlast.Preceding, Offset: n}, nil
		}
	}
}

func (p *Parser) parseExprList() ([]sqlast.Expr, error) {
	var exprs []sqlast.Expr
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	exprs = append(exprs, first)
	for p.tryConsume(sqllex.COMMA) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}
