// cmd/pivotsql is an embeddable in-memory analytical SQL engine's CLI.
//
// Usage:
//
//	pivotsql [options]
//
// With no -e, it opens an interactive shell reading from stdin. Use
// ".help" inside the shell for available dot commands.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"pivotsql/pkg/pivotcli"
	"pivotsql/pkg/pivotsql"
	"pivotsql/pkg/sqlparser"
)

var version = "0.1.0"

type options struct {
	Exec          string `short:"e" long:"exec" description:"Execute the given SQL statement(s) and exit" value-name:"sql"`
	Config        string `short:"c" long:"config" description:"YAML config file (cache_capacity, case_sensitive)" value-name:"path"`
	Debug         bool   `long:"debug" description:"Pretty-print the parsed AST for -e instead of executing it"`
	CacheCapacity int    `long:"cache-capacity" description:"Query result cache capacity (0 disables caching)" default:"1000"`
	Version       bool   `long:"version" description:"Show version and exit"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[options]"
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	if opts.Version {
		fmt.Println(version)
		return
	}

	cfg := pivotsql.Config{CacheCapacity: opts.CacheCapacity}
	if opts.Config != "" {
		loaded, err := pivotsql.LoadConfig(opts.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", opts.Config, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if opts.Debug && opts.Exec != "" {
		stmts, err := sqlparser.Parse(opts.Exec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
			os.Exit(1)
		}
		for _, s := range stmts {
			pp.Println(s)
		}
		return
	}

	engine := pivotsql.NewFromConfig(cfg)

	if opts.Exec != "" {
		result, err := engine.Execute(opts.Exec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(result)
		return
	}

	repl := pivotcli.NewREPLWithEngine(engine, os.Stdin, os.Stdout, os.Stderr)
	repl.Run()
}

func printResult(result pivotsql.Result) {
	if len(result.Columns) == 0 {
		if result.Message != "" {
			fmt.Println(result.Message)
		} else {
			fmt.Printf("Rows affected: %d\n", result.RowsAffected)
		}
		return
	}
	for _, row := range result.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Print("\t")
			}
			if v.IsNull() {
				fmt.Print("NULL")
			} else {
				fmt.Print(v.String())
			}
		}
		fmt.Println()
	}
}
