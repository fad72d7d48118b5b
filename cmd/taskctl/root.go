package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gx-tools/task-tracker/pkg/client"
)

const sessionCookie = "access_token"

var serverURL string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Terminal client for the task-tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server",
		envOr("TASKCTL_SERVER", "http://localhost:3500"), "API base URL")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newTasksCmd(),
		newProjectsCmd(),
	)
	return root
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			resp, err := c.Login(context.Background(), email, password)
			if err != nil {
				return err
			}
			if !resp.Success {
				return errors.New(resp.Message)
			}
			if err := saveSession(c); err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and drop the local cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			resp, err := c.Logout(context.Background())
			if err == nil {
				fmt.Println(resp.Message)
			}
			// Local state is dropped regardless of the server outcome.
			return dropSession()
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().Status(context.Background())
			if err != nil {
				return err
			}
			if !resp.Success {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s\n", resp.Data)
			return nil
		},
	}
}

func newTasksCmd() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := newClient().ListTasks(context.Background())
			if err != nil {
				return err
			}
			for _, t := range tasks {
				mark := " "
				if t.Completed {
					mark = "x"
				}
				fmt.Printf("[%s] %s  %s\n", mark, t.ID, t.Title)
			}
			return nil
		},
	})

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := newClient().CreateTask(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("created %s\n", t.ID)
			return nil
		},
	})

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient().CompleteTask(context.Background(), args[0])
		},
	})

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient().DeleteTask(context.Background(), args[0])
		},
	})

	return tasksCmd
}

func newProjectsCmd() *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}
	projectsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := newClient().ListProjects(context.Background())
			if err != nil {
				return err
			}
			for _, p := range list {
				fmt.Printf("%s  %s\n", p.ID, p.Title)
			}
			return nil
		},
	})
	return projectsCmd
}

func newClient() *client.Client {
	c := client.New(serverURL)
	if token, err := loadSession(); err == nil && token != "" {
		if u, err := url.Parse(serverURL); err == nil {
			httpClient := &http.Client{}
			jar := newSeededJar(u, token)
			httpClient.Jar = jar
			return client.New(serverURL, client.WithHTTPClient(httpClient))
		}
	}
	return c
}

func sessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".taskctl", "session")
}

func saveSession(c *client.Client) error {
	token := c.SessionToken(serverURL)
	if token == "" {
		return errors.New("no session cookie returned")
	}
	path := sessionPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func loadSession() (string, error) {
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func dropSession() error {
	err := os.Remove(sessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
