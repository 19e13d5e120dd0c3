package main

import (
	"fmt"

	"postboard/internal/database"
	"postboard/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var opts seed.Options

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake users, posts and discussions",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			if _, err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			res, err := seed.NewSeeder(db, opts).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Created %d users, %d posts, %d comments, %d replies, %d reactions\n",
				res.Users, res.Posts, res.Comments, res.Replies, res.Reactions)
			if !opts.SkipBcrypt {
				fmt.Fprintf(cmd.OutOrStdout(), "All seeded users have the password: %s\n", seed.DefaultPassword)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.NumUsers, "users", 20, "number of users to create")
	cmd.Flags().IntVar(&opts.NumPosts, "posts", 100, "number of posts to create")
	cmd.Flags().BoolVar(&opts.ShouldClean, "clean", false, "delete existing users and content first")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "fake data seed (0 = random)")
	cmd.Flags().BoolVar(&opts.SkipBcrypt, "skip-bcrypt", false, "store unhashed passwords (accounts cannot log in)")
	return cmd
}
