package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-client/routes"
	"github.com/jrsteele09/go-blog-client/taxonomy"
)

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Browse and manage tags",
	}

	var group string
	var counts bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.context(cmd)
			if counts {
				tags, err := a.taxonomy.TagsWithCount(ctx)
				if err != nil {
					return err
				}
				return a.print.emit(tags, func(w io.Writer) {
					fmt.Fprintln(w, "ID\tNAME\tGROUP\tPOSTS")
					for _, t := range tags {
						fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", t.ID, t.Name, t.Group.Label(), t.PostCount)
					}
				})
			}

			var (
				tags []taxonomy.Tag
				err  error
			)
			if group != "" {
				g, perr := taxonomy.ParseTagGroup(group)
				if perr != nil {
					return perr
				}
				tags, err = a.taxonomy.TagsByGroup(ctx, g)
			} else {
				tags, err = a.taxonomy.Tags(ctx)
			}
			if err != nil {
				return err
			}
			taxonomy.SortTags(tags)
			return a.print.emit(tags, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tGROUP")
				for _, t := range tags {
					fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Name, t.Group.Label())
				}
			})
		},
	}
	list.Flags().StringVar(&group, "group", "", "only tags of this group")
	list.Flags().BoolVar(&counts, "counts", false, "include post counts")

	grouped := &cobra.Command{
		Use:   "grouped",
		Short: "Tags by group with post counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.taxonomy.GroupedTags(a.context(cmd))
			if err != nil {
				return err
			}
			return a.print.emit(g, func(w io.Writer) {
				for _, group := range taxonomy.TagGroupOrder {
					tags := g.Groups[group]
					if len(tags) == 0 {
						continue
					}
					fmt.Fprintf(w, "%s\n", group.Label())
					for _, t := range tags {
						fmt.Fprintf(w, "  %s\t%d\n", t.Name, t.PostCount)
					}
				}
			})
		},
	}

	var tagLimit int
	popular := &cobra.Command{
		Use:   "popular",
		Short: "Most used tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.taxonomy.PopularTags(a.context(cmd), tagLimit)
			if err != nil {
				return err
			}
			return a.print.emit(tags, func(w io.Writer) {
				for _, t := range tags {
					fmt.Fprintf(w, "%d.\t%s\t%d\n", t.Rank, t.Name, t.PostCount)
				}
			})
		},
	}
	popular.Flags().IntVar(&tagLimit, "limit", 5, "number of tags")

	var createGroup string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(routes.RouteWrite); err != nil {
				return err
			}
			req, err := tagRequest(args[0], createGroup)
			if err != nil {
				return err
			}
			tag, err := a.taxonomy.CreateTag(a.context(cmd), req)
			if err != nil {
				return err
			}
			return a.printTag(tag)
		},
	}
	create.Flags().StringVar(&createGroup, "group", "", "tag group, ETC when empty")

	var updateName, updateGroup string
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Rename or regroup a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(routes.RouteWrite); err != nil {
				return err
			}
			req, err := tagRequest(updateName, updateGroup)
			if err != nil {
				return err
			}
			tag, err := a.taxonomy.UpdateTag(a.context(cmd), id, req)
			if err != nil {
				return err
			}
			return a.printTag(tag)
		},
	}
	update.Flags().StringVar(&updateName, "name", "", "new name")
	update.Flags().StringVar(&updateGroup, "group", "", "new group")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(routes.RouteWrite); err != nil {
				return err
			}
			if err := a.taxonomy.DeleteTag(a.context(cmd), id); err != nil {
				return err
			}
			return a.print.done(fmt.Sprintf("Deleted tag %d.", id))
		},
	}

	cmd.AddCommand(list, grouped, popular, create, update, del)
	return cmd
}

func tagRequest(name, group string) (taxonomy.TagRequest, error) {
	req := taxonomy.TagRequest{Name: name}
	if group != "" {
		g, err := taxonomy.ParseTagGroup(group)
		if err != nil {
			return req, err
		}
		req.Group = &g
	}
	return req, nil
}

func (a *app) printTag(t *taxonomy.Tag) error {
	return a.print.emit(t, func(w io.Writer) {
		fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Name, t.Group.Label())
	})
}

func newStacksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stacks",
		Short: "Browse technology stacks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			stacks, err := a.taxonomy.Stacks(a.context(cmd))
			if err != nil {
				return err
			}
			return a.print.emit(stacks, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tGROUP")
				for _, s := range stacks {
					fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Name, s.Group.Label())
				}
			})
		},
	}

	grouped := &cobra.Command{
		Use:   "grouped",
		Short: "Stacks by group with post counts and filter paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.taxonomy.GroupedStacks(a.context(cmd))
			if err != nil {
				return err
			}
			return a.print.emit(g, func(w io.Writer) {
				for _, group := range taxonomy.StackGroupOrder {
					stacks := g[group]
					if len(stacks) == 0 {
						continue
					}
					fmt.Fprintf(w, "%s\n", group.Label())
					for _, s := range stacks {
						fmt.Fprintf(w, "  %s\t%d\t%s\n", s.Name, s.PostCount, stackPath(group, s.Name))
					}
				}
			})
		},
	}

	var limit int
	popular := &cobra.Command{
		Use:   "popular",
		Short: "Most used stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			stacks, err := a.taxonomy.PopularStacks(a.context(cmd), limit)
			if err != nil {
				return err
			}
			return a.print.emit(stacks, func(w io.Writer) {
				for _, s := range stacks {
					fmt.Fprintf(w, "%d.\t%s\t%d\n", s.Rank, s.Name, s.PostCount)
				}
			})
		},
	}
	popular.Flags().IntVar(&limit, "limit", 5, "number of stacks")

	cmd.AddCommand(list, grouped, popular)
	return cmd
}
