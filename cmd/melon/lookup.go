package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var artistCmd = &cobra.Command{
	Use:   "artist <name>",
	Short: "Resolve an artist profile and its top tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		profile, err := a.artists.ResolveArtist(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), profile)
	}),
}

var trackCmd = &cobra.Command{
	Use:   "track <song-id>",
	Short: "Resolve a stored track with its details and lyrics",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		bundle, err := a.tracks.ResolveTrack(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), bundle)
	}),
}

var previewCmd = &cobra.Command{
	Use:   "preview <artist> <title>",
	Short: "Look up a track by artist and title without storing it",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		bundle, err := a.tracks.ResolveTrackEphemeral(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), bundle)
	}),
}

var songsCmd = &cobra.Command{
	Use:   "songs <artist-page-url>",
	Short: "List the song pages linked from a Genius artist page",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		links, err := a.genius.TrackLinks(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), links)
	}),
}

func init() {
	rootCmd.AddCommand(artistCmd, trackCmd, previewCmd, songsCmd)
}

// withApp wires the application for a one-shot command and closes it afterwards.
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		return run(ctx, a, cmd, args)
	}
}
