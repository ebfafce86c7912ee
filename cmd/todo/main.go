package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"todo-sync/internal/models"
	"todo-sync/internal/syncer"
)

const defaultServerURL = "http://localhost:8080"

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	serverURL := os.Getenv("TODO_SERVER")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	ctx := context.Background()
	ctrl := syncer.NewController(syncer.NewClient(serverURL))

	command := os.Args[1]
	switch command {
	case "add":
		handleAddCommand(ctx, ctrl)
	case "list":
		handleListCommand(ctx, ctrl)
	case "toggle":
		handleToggleCommand(ctx, ctrl)
	case "delete":
		handleDeleteCommand(ctx, ctrl)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printHelp()
		os.Exit(1)
	}
}

func refreshOrDie(ctx context.Context, ctrl *syncer.Controller) {
	if err := ctrl.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching tasks: %v\n", err)
		os.Exit(1)
	}
}

func hasTask(tasks []models.Task, id int64) bool {
	for _, task := range tasks {
		if task.ID == id {
			return true
		}
	}
	return false
}

func requireTask(ctrl *syncer.Controller, id int64) {
	if !hasTask(ctrl.Snapshot().Tasks, id) {
		fmt.Fprintf(os.Stderr, "Error: task %d not found\n", id)
		os.Exit(1)
	}
}

func handleAddCommand(ctx context.Context, ctrl *syncer.Controller) {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	title := addCmd.String("title", "", "Task title")
	addCmd.Parse(os.Args[2:])

	if *title == "" {
		fmt.Fprintln(os.Stderr, "Error: --title is required")
		os.Exit(1)
	}

	if err := ctrl.Add(ctx, *title); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding task: %v\n", err)
		os.Exit(1)
	}

	state := ctrl.Snapshot()
	if len(state.Tasks) > 0 {
		fmt.Printf("Added task with ID %d\n", state.Tasks[0].ID)
	}
}

func handleListCommand(ctx context.Context, ctrl *syncer.Controller) {
	refreshOrDie(ctx, ctrl)

	state := ctrl.Snapshot()
	if len(state.Tasks) == 0 {
		fmt.Println("No tasks found")
		return
	}

	for _, task := range state.Tasks {
		status := "Pending"
		if task.Completed {
			status = "Completed"
		}
		fmt.Printf("%d: %s [%s]\n", task.ID, task.Title, status)
	}
}

func handleToggleCommand(ctx context.Context, ctrl *syncer.Controller) {
	toggleCmd := flag.NewFlagSet("toggle", flag.ExitOnError)
	id := toggleCmd.Int64("id", 0, "Task ID to toggle")
	toggleCmd.Parse(os.Args[2:])

	if *id == 0 {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	refreshOrDie(ctx, ctrl)
	requireTask(ctrl, *id)

	if err := ctrl.Toggle(ctx, *id); err != nil {
		fmt.Fprintf(os.Stderr, "Error toggling task: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Task %d toggled\n", *id)
}

func handleDeleteCommand(ctx context.Context, ctrl *syncer.Controller) {
	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	id := deleteCmd.Int64("id", 0, "Task ID to delete")
	deleteCmd.Parse(os.Args[2:])

	if *id == 0 {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	refreshOrDie(ctx, ctrl)
	requireTask(ctrl, *id)

	if err := ctrl.Remove(ctx, *id); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting task: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Task %d deleted\n", *id)
}

func printHelp() {
	fmt.Println(`Usage: todo <command> [flags]

Commands:
  add    --title="..."   Add new task
  list                   List tasks
  toggle --id=ID         Toggle task completion
  delete --id=ID         Delete task

Environment:
  TODO_SERVER            Server base URL (default http://localhost:8080)`)
}
