package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/scenario"
)

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List the available scenarios",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Only list scenarios with this tag (repeatable)",
		},
	},
	Action: func(c *cli.Context) error {
		selected, err := scenario.Select(nil, c.StringSlice("tag"))
		if err != nil {
			return err
		}

		w := c.App.Writer
		for _, sc := range selected {
			fmt.Fprintf(w, "%s%-28s%s %s[%s]%s\n",
				color(colorBold), sc.Name, color(colorReset),
				color(colorGray), strings.Join(sc.Tags, ", "), color(colorReset))
			fmt.Fprintf(w, "    %s\n", sc.Description)
		}
		fmt.Fprintf(w, "\n%d scenario(s); tags: %s\n", len(selected), strings.Join(scenario.Tags(), ", "))
		return nil
	},
}
