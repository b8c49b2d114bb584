package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"task-tracker-client/core"
)

func listCmd(app *App) *cobra.Command {
	var priority, sortOrder, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks under the active filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(cmd.Context()); err != nil {
				return err
			}

			// A changed filter flag is the "filter set changed" signal:
			// merge it into the store, then refetch.
			var patch core.FilterPatch
			if cmd.Flags().Changed("priority") {
				p := core.Priority(priority)
				patch.Priority = &p
			}
			if cmd.Flags().Changed("sort") {
				o := core.SortOrder(sortOrder)
				patch.SortOrder = &o
			}
			if cmd.Flags().Changed("search") {
				patch.Search = &search
			}
			app.tasks.SetFilters(patch)

			if err := app.tasks.FetchTasks(cmd.Context(), nil); err != nil {
				return err
			}
			printTasks(app.tasks.Tasks())
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "filter by priority (High, Medium, Low)")
	cmd.Flags().StringVarP(&sortOrder, "sort", "s", "", "sort by creation order (asc, desc)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "substring match against titles")

	return cmd
}

func addCmd(app *App) *cobra.Command {
	var title, deadline, priority string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(cmd.Context()); err != nil {
				return err
			}
			task, err := app.tasks.CreateTask(cmd.Context(), core.NewTask{
				Title:    title,
				Deadline: deadline,
				Priority: core.Priority(priority),
			})
			if err != nil {
				return err
			}
			fmt.Printf("created %s: %s\n", task.TaskID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(core.PriorityMedium), "priority (High, Medium, Low)")

	return cmd
}

func showCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(cmd.Context()); err != nil {
				return err
			}
			task, err := app.tasks.FetchTaskByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTasks([]core.Task{task})
			return nil
		},
	}
}

func editCmd(app *App) *cobra.Command {
	var title, deadline, priority string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(cmd.Context()); err != nil {
				return err
			}

			var patch core.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("deadline") {
				patch.Deadline = &deadline
			}
			if cmd.Flags().Changed("priority") {
				p := core.Priority(priority)
				patch.Priority = &p
			}

			task, err := app.tasks.UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Printf("updated %s: %s\n", task.TaskID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority (High, Medium, Low)")

	return cmd
}

func doneCmd(app *App) *cobra.Command {
	return statusCmd(app, "done", "Mark a task as done", true)
}

func undoneCmd(app *App) *cobra.Command {
	return statusCmd(app, "undone", "Mark a task as not done", false)
}

func statusCmd(app *App, use, short string, isDone bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(cmd.Context()); err != nil {
				return err
			}
			task, err := app.tasks.UpdateTaskStatus(cmd.Context(), args[0], isDone)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", statusLabel(task), task.Title)
			return nil
		},
	}
}

func rmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(cmd.Context()); err != nil {
				return err
			}
			if err := app.tasks.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func printTasks(tasks []core.Task) {
	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDEADLINE\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.TaskID, statusLabel(t), t.Priority, t.Deadline, t.Title)
	}
	_ = w.Flush()
}

func statusLabel(t core.Task) string {
	if t.IsDone {
		return "done"
	}
	return "open"
}
