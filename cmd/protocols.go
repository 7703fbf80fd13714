package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"firestige.xyz/stratum/internal/config"
)

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List the registered codecs and the identifiers they claim",
	RunE:  runProtocols,
}

func runProtocols(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODEC\tLINK TYPES\tPROTOCOL IDS")
	for _, c := range reg.Codecs() {
		fmt.Fprintf(w, "%s\t%v\t", c.Name(), c.DataLinkTypes())
		for i, id := range c.ProtocolIDs() {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "0x%04x", id)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
