package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"target-shooting/internal/scoring"
	"target-shooting/internal/store"
)

type commandEnv struct {
	gw  store.Gateway
	log *zap.Logger
	out io.Writer
}

type importResult struct {
	Created int
	Skipped int
}

func importCommand(c *cli.Context, env *commandEnv) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()
	result, err := importGames(c, env, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "imported %d games, skipped %d existing\n", result.Created, result.Skipped)
	return nil
}

// importGames creates every game in the document that is not stored yet. Any
// invalid game aborts the import before anything is written.
func importGames(c *cli.Context, env *commandEnv, r io.Reader) (importResult, error) {
	doc, err := store.ReadDocument(r)
	if err != nil {
		return importResult{}, err
	}
	for _, game := range doc.Games {
		if err := scoring.Validate(game); err != nil {
			return importResult{}, fmt.Errorf("game %s: %w", game.ID, err)
		}
	}

	var result importResult
	for _, game := range doc.Games {
		_, err := env.gw.Get(c.Context, game.ID)
		switch {
		case err == nil:
			result.Skipped++
			env.log.Debug("game exists, skipping", zap.String("game_id", game.ID))
			continue
		case !errors.Is(err, scoring.ErrNotFound):
			return result, err
		}
		if _, err := env.gw.Create(c.Context, game); err != nil {
			return result, fmt.Errorf("game %s: %w", game.ID, err)
		}
		result.Created++
		env.log.Debug("game imported", zap.String("game_id", game.ID))
	}
	return result, nil
}

func exportCommand(c *cli.Context, env *commandEnv) error {
	games, err := env.gw.List(c.Context)
	if err != nil {
		return err
	}
	store.SortNewestFirst(games)
	f, err := os.Create(c.String("file"))
	if err != nil {
		return err
	}
	if err := store.WriteDocument(f, games); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(env.out, "exported %d games\n", len(games))
	return nil
}

func resetCommand(c *cli.Context, env *commandEnv) error {
	if !c.Bool("yes") {
		return errors.New("refusing to delete games without --yes")
	}
	count, err := env.gw.DeleteAll(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "deleted %d games\n", count)
	return nil
}

func leaderboardCommand(c *cli.Context, env *commandEnv) error {
	game, err := env.gw.Get(c.Context, c.String("game"))
	if err != nil {
		return err
	}
	return printLeaderboard(env.out, game)
}

func printLeaderboard(w io.Writer, game scoring.Game) error {
	fmt.Fprintf(w, "%s (%s)\n", game.Name, game.Status)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "RANK\tPLAYER")
	for _, room := range scoring.Rooms {
		fmt.Fprintf(tw, "\t%s", room.Key())
	}
	fmt.Fprintln(tw, "\tHITS\tTOTAL")
	for _, s := range scoring.Ranking(game) {
		fmt.Fprintf(tw, "%d\t%s", s.Rank, s.Name)
		for _, room := range scoring.Rooms {
			fmt.Fprintf(tw, "\t%d", s.Rooms[room.Key()])
		}
		fmt.Fprintf(tw, "\t%d\t%d\n", s.Hits, s.Total)
	}
	return tw.Flush()
}
