package offline

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/kvv-bao/profiler/internal/pkg/logger"
	"github.com/kvv-bao/profiler/internal/service"
)

func MatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "match one application against the tree of an audit document",
		ArgsUsage: "[value...]",
		Description: "Values are given in feature order as arguments, or by feature name with --attr. " +
			"An empty argument marks a missing characteristic.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tree", Aliases: []string{"t"}, Usage: "audit document written by build; - for stdin", Required: true},
			&cli.StringSliceFlag{Name: "attr", Aliases: []string{"a"}, Usage: "characteristic as feature=value; repeatable"},
		},
		Action: func(c *cli.Context) error {
			logger.ConfigureConsole(false)

			q, err := matchQuery(c.Args().Slice(), c.StringSlice("attr"))
			if err != nil {
				return err
			}
			return runMatch(c.String("tree"), q, os.Stdout)
		},
	}
}

func matchQuery(values, attrs []string) (service.MatchQuery, error) {
	switch {
	case len(values) > 0 && len(attrs) > 0:
		return service.MatchQuery{}, errors.New("give either values or --attr, not both")
	case len(attrs) > 0:
		m := make(map[string]string, len(attrs))
		for _, a := range attrs {
			k, v, ok := strings.Cut(a, "=")
			if !ok || k == "" {
				return service.MatchQuery{}, errors.Errorf("invalid attribute %q: expected feature=value", a)
			}
			m[k] = v
		}
		return service.MatchQuery{Attributes: m}, nil
	default:
		return service.MatchQuery{Values: append([]string{}, values...)}, nil
	}
}

func runMatch(treePath string, q service.MatchQuery, stdout io.Writer) error {
	pt, err := ReadTree(treePath)
	if err != nil {
		return err
	}

	p, err := service.NewStaticMatch(pt).Match(q)
	if err != nil {
		return err
	}
	return writeJSON(stdio, stdout, p)
}
