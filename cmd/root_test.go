package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	require.Equal(t, "bipwatch", root.Use)

	scrapeCmd, _, err := root.Find([]string{"scrape"})
	require.NoError(t, err)
	require.Equal(t, "scrape", scrapeCmd.Use)

	require.NotNil(t, root.PersistentFlags().Lookup("config"))
	require.NotNil(t, root.PersistentFlags().Lookup("dev-logging"))
	require.NotNil(t, scrapeCmd.Flags().Lookup("output"))
	require.NotNil(t, scrapeCmd.Flags().Lookup("scrape-only"))
}
