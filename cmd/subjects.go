package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abhisek/giasu/internal/session"
	"github.com/abhisek/giasu/internal/store"
	"github.com/abhisek/giasu/internal/tutor"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects <username>",
	Short: "List a user's subjects and their progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, closeStore, err := openSessions(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		all, err := sessions.Load(context.Background(), args[0])
		if err != nil {
			return err
		}

		if len(all) == 0 {
			fmt.Println("No subjects found.")
			return nil
		}

		names := make([]string, 0, len(all))
		for subject := range all {
			names = append(names, subject)
		}
		sort.Strings(names)

		fmt.Printf("%-24s  %-12s  %-8s  %s\n", "Subject", "Voice", "Convos", "Messages")
		for _, subject := range names {
			sess := all[subject]
			var messages int
			for _, conv := range sess.Conversations {
				messages += len(conv)
			}
			fmt.Printf("%-24s  %-12s  %-8d  %d\n",
				subject, sess.Profile.Voice, len(sess.Conversations), messages)
		}
		return nil
	},
}

var subjectsDeleteCmd = &cobra.Command{
	Use:   "delete <username> <subject>",
	Short: "Delete a subject and all its conversations",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, closeStore, err := openSessions(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx := context.Background()
		all, err := sessions.Load(ctx, args[0])
		if err != nil {
			return err
		}
		if err := sessions.Delete(ctx, args[0], all, args[1]); err != nil {
			return err
		}
		fmt.Printf("Deleted %q for %s.\n", args[1], args[0])
		return nil
	},
}

func init() {
	subjectsCmd.AddCommand(subjectsDeleteCmd)
}

// openSessions opens the store and wraps it in a session store. Listing and
// deletion never generate welcome turns, so a mock generator suffices.
func openSessions(cmd *cobra.Command) (*session.Store, func(), error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return session.NewStore(st, &tutor.MockGenerator{}), func() { st.Close() }, nil
}
