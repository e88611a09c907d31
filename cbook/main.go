// Command cbook keeps checkbook registers reconciled with the bank.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/checkbook/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell to complete the command line.
	completion(commander.Name()).Complete(commander.Name())

	flag.Parse()

	if name := flag.Arg(0); name != "" && !known(name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func known(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, cmds := range cmd.Commands() {
		for _, c := range cmds {
			if c.Name() == name {
				return true
			}
		}
	}
	return false
}

// completion describes the command line: global flags, subcommands and their flags.
func completion(name string) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	for _, cmds := range cmd.Commands() {
		for _, c := range cmds {
			f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(f)
			root.Sub[c.Name()] = &complete.Command{Flags: flags(f)}
		}
	}
	return root
}

// flags predicts the values of the flags of f.
func flags(f *flag.FlagSet) map[string]complete.Predictor {
	out := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		switch fl.Name {
		case "f":
			out[fl.Name] = predict.Files("*")
		case "db", "env":
			out[fl.Name] = predict.Files("*")
		case "t":
			out[fl.Name] = predict.Set{"checking", "savings", "credit"}
		default:
			if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				out[fl.Name] = predict.Nothing
			} else {
				out[fl.Name] = predict.Something
			}
		}
	})
	return out
}
