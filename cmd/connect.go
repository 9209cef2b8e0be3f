package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peternagy/dbquerytool/internal/types"
)

// connect opens a session on the --profile flag, or on the kind's last
// used profile when the flag is empty.
func (c *cli) connect(cmd *cobra.Command, kind types.StoreKind, profile string) (string, error) {
	if profile == "" {
		last, ok := c.app.LastConnection(kind)
		if !ok {
			return "", fmt.Errorf("no %s profile given and none used before; pass --profile", kind)
		}
		profile = last
	}
	sess, err := c.app.Connect(cmd.Context(), kind, profile)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}
