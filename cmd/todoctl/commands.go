package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/query"
)

// todoRow is the printed form of a todo.
type todoRow struct {
	ID       string `json:"_id" yaml:"_id"`
	Owner    string `json:"owner" yaml:"owner"`
	Status   bool   `json:"status" yaml:"status"`
	Body     string `json:"body" yaml:"body"`
	Category string `json:"category" yaml:"category"`
}

type memberRow struct {
	ID    string `json:"_id" yaml:"_id"`
	Owner string `json:"owner" yaml:"owner"`
}

type summaryRow struct {
	Key   string      `json:"_id" yaml:"_id"`
	Count int         `json:"count" yaml:"count"`
	Todos []memberRow `json:"todos" yaml:"todos"`
}

func toRow(t domain.Todo) todoRow {
	return todoRow{ID: t.ID, Owner: t.Owner, Status: t.Status, Body: t.Body, Category: t.Category}
}

// flagParams exposes changed flags as query parameters.
type flagParams struct {
	flags *pflag.FlagSet
	names map[string]string // query parameter -> flag name
}

func (p flagParams) Has(key string) bool {
	name, ok := p.names[key]
	return ok && p.flags.Changed(name)
}

func (p flagParams) Get(key string) string {
	if !p.Has(key) {
		return ""
	}
	return p.flags.Lookup(p.names[key]).Value.String()
}

func addSortFlags(fs *pflag.FlagSet) {
	fs.String("sort-by", "", "Field to sort by")
	fs.String("sort-order", "", "Sort direction (asc|desc)")
}

func (c *cli) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos matching the given filters",
		Example: `  todoctl list --owner Fry
  todoctl list --contains potato --sort-by category --sort-order desc --limit 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := query.BuildListQuery(flagParams{flags: cmd.Flags(), names: map[string]string{
				query.ParamOwner:     "owner",
				query.ParamStatus:    "status",
				query.ParamCategory:  "category",
				query.ParamContains:  "contains",
				query.ParamLimit:     "limit",
				query.ParamSortBy:    "sort-by",
				query.ParamSortOrder: "sort-order",
			}})
			if err != nil {
				return err
			}

			return c.withService(cmd.Context(), func(svc *todo.Service) error {
				todos, err := svc.ListTodos(cmd.Context(), q)
				if err != nil {
					return err
				}
				rows := make([]todoRow, 0, len(todos))
				for _, t := range todos {
					rows = append(rows, toRow(t))
				}
				return c.print(rows)
			})
		},
	}

	fs := cmd.Flags()
	fs.String("owner", "", "Exact owner")
	fs.String("status", "", "complete or incomplete")
	fs.String("category", "", "Exact category")
	fs.String("contains", "", "Case-insensitive substring of the body")
	// Kept as a string so a malformed value is reported like the HTTP API does.
	fs.String("limit", "", "Maximum number of todos to print")
	addSortFlags(fs)
	return cmd
}

func (c *cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *todo.Service) error {
				t, err := svc.GetTodo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.print(toRow(*t))
			})
		},
	}
}

func (c *cli) newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "group <owner|status|category>",
		Short:     "Summarize todos per distinct value of a field",
		Example:   "  todoctl group status --sort-by count --sort-order desc",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.DimensionOwner), string(domain.DimensionStatus), string(domain.DimensionCategory)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := domain.ParseDimension(args[0])
			if err != nil {
				return err
			}
			q := query.BuildGroupQuery(flagParams{flags: cmd.Flags(), names: map[string]string{
				query.ParamSortBy:    "sort-by",
				query.ParamSortOrder: "sort-order",
			}}, dim)

			return c.withService(cmd.Context(), func(svc *todo.Service) error {
				summaries, err := svc.GroupTodos(cmd.Context(), q)
				if err != nil {
					return err
				}
				rows := make([]summaryRow, 0, len(summaries))
				for _, s := range summaries {
					members := make([]memberRow, 0, len(s.Members))
					for _, m := range s.Members {
						members = append(members, memberRow{ID: m.ID, Owner: m.Owner})
					}
					rows = append(rows, summaryRow{Key: s.Key, Count: s.Count, Todos: members})
				}
				return c.print(rows)
			})
		},
	}
	addSortFlags(cmd.Flags())
	return cmd
}

func (c *cli) newCreateCmd() *cobra.Command {
	var in todo.CreateTodoInput

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a todo and print its id",
		Example: `  todoctl create --owner Fry --body "do homework" --category homework --status=false`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *todo.Service) error {
				id, err := svc.CreateTodo(cmd.Context(), in)
				if err != nil {
					return err
				}
				return c.print(map[string]string{"id": id})
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&in.Owner, "owner", "", "Owner of the todo")
	fs.BoolVar(&in.Status, "status", false, "Whether the todo is complete")
	fs.StringVar(&in.Body, "body", "", "Text of the todo")
	fs.StringVar(&in.Category, "category", "", "Category of the todo")
	return cmd
}

func (c *cli) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *todo.Service) error {
				if err := svc.DeleteTodo(cmd.Context(), args[0]); err != nil {
					return err
				}
				return c.print(map[string]string{"deleted": args[0]})
			})
		},
	}
}

// fixture is one entry of a seed file.
type fixture struct {
	Owner    string `yaml:"owner"`
	Status   bool   `yaml:"status"`
	Body     string `yaml:"body"`
	Category string `yaml:"category"`
}

func loadFixtures(path string) ([]fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	var fixtures []fixture
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures %s: %w", path, err)
	}
	return fixtures, nil
}

func (c *cli) newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Insert the todos listed in a YAML file",
		Long: `Insert every todo of a YAML list of {owner, status, body, category}.
Entries are validated like any other create; seeding stops at the first invalid entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := loadFixtures(args[0])
			if err != nil {
				return err
			}

			return c.withService(cmd.Context(), func(svc *todo.Service) error {
				ids := make([]string, 0, len(fixtures))
				for i, f := range fixtures {
					id, err := svc.CreateTodo(cmd.Context(), todo.CreateTodoInput{
						Owner:    f.Owner,
						Status:   f.Status,
						Body:     f.Body,
						Category: f.Category,
					})
					if err != nil {
						return fmt.Errorf("fixture %d: %w", i, err)
					}
					ids = append(ids, id)
				}
				return c.print(map[string]any{"inserted": len(ids), "ids": ids})
			})
		},
	}
}
