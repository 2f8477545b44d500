package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/glue-tools/glue/command"
	_ "github.com/glue-tools/glue/command/export"
	_ "github.com/glue-tools/glue/command/translate"
)

// version is set at compile time when built with the following command:
// go build -ldflags "-X main.version=$(git rev-parse --short HEAD)"
var version string

var (
	versionFlag bool
	verboseFlag bool
)

var commands = command.Commands

var log = command.Log

func init() {
	flag.BoolVar(&versionFlag, "version", false, "")
	flag.BoolVar(&verboseFlag, "verbose", false, "")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	command.SetupLogging(os.Stderr, verboseFlag)

	if versionFlag {
		fmt.Println(version)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		return
	}

	if args[0] == "help" {
		help(args[1:])
		return
	}

	for _, cmd := range commands {
		if cmd.Name() == args[0] {
			cmd.Flag.Usage = func() { cmd.Usage(nil) }
			cmd.Flag.Parse(args[1:])
			args = cmd.Flag.Args()
			if err := cmd.Run(cmd, args); err != nil {
				cmd.Usage(err)
			}
			return
		}
	}

	log.Fatalf("glue: unknown subcommand %q\nRun 'glue help' for usage.", args[0])
}

var usageTemplate = `glue projects sequences and alignments between coordinate spaces:
reference-aligned fastas, chained alignments, duplicate regions and
all-columns multiple alignments built from nucmer deltas.

Usage:

	glue [--verbose] command [arguments]

The commands are:
{{range .}}
	{{.Name | printf "%-13s"}} {{.Short}}{{end}}

Use "glue help [command]" for more information about a command.
Use "glue --version" to print the build version.
`

var helpTemplate = `usage: glue {{.UsageLine}}

{{.Long | trim}}
`

// tmpl executes the given template text on data, writing the result to w.
func tmpl(w io.Writer, text string, data interface{}) {
	t := template.Must(template.New("root").Funcs(template.FuncMap{"trim": strings.TrimSpace}).Parse(text))
	if err := t.Execute(w, data); err != nil {
		panic(err)
	}
}

func printUsage(w io.Writer) {
	bw := bufio.NewWriter(w)
	tmpl(bw, usageTemplate, commands)
	bw.Flush()
}

func usage() {
	printUsage(os.Stderr)
}

// help implements the 'help' command.
func help(args []string) {
	if len(args) == 0 {
		printUsage(os.Stdout)
		return
	}

	if len(args) != 1 {
		log.Fatal("usage: glue help command\n\nToo many arguments given.")
	}

	arg := args[0]

	for _, cmd := range commands {
		if cmd.Name() == arg {
			tmpl(os.Stdout, helpTemplate, cmd)
			return
		}
	}

	log.Fatalf("Unknown help topic %#q.  Run 'glue help'.", arg)
}
