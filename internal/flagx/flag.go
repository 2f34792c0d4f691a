// Package flagx lets several independent flag sets share one command line.
// Each owner filters the arguments down to the flags it declares before
// parsing, so flags owned by someone else are never reported as unknown.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Spec lists the flags a parser owns. Valued flags may take their value
// from the following argument; switches never do.
type Spec struct {
	Valued   []string
	Switches []string
}

// Filter returns the arguments belonging to s, in their original order.
//
// Accepted forms:
//
//	-c conf.json
//	-c=conf.json
//	-l            (switch)
//	-l=false      (switch)
func (s Spec) Filter(args []string) []string {
	valued := toSet(s.Valued)
	switches := toSet(s.Switches)

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if valued[name] || switches[name] {
				filtered = append(filtered, arg)
			}
			continue
		}

		switch {
		case switches[arg]:
			filtered = append(filtered, arg)
		case valued[arg]:
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// FilterArgs keeps the valued flags in allowed and their values.
func FilterArgs(args []string, allowed []string) []string {
	return Spec{Valued: allowed}.Filter(args)
}

// ConfigPath returns the JSON config path passed with -c or -config, or ""
// when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
