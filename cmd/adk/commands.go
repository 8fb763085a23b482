package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nirb28/dsp-adk2/internal/server"
	"github.com/nirb28/dsp-adk2/pkg/agent"
	"github.com/nirb28/dsp-adk2/pkg/configstore"
	"github.com/nirb28/dsp-adk2/pkg/dispatch"
	"github.com/nirb28/dsp-adk2/pkg/dispatch/builtin"
	"github.com/nirb28/dsp-adk2/pkg/llmfactory"
	"github.com/nirb28/dsp-adk2/pkg/runstore"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type engine struct {
	registry   *spec.Registry
	store      *configstore.Store
	dispatcher *dispatch.Dispatcher
	runner     *agent.Runner
}

// newEngine loads the stored specifications, seeds the builtin tools,
// and wires the dispatcher and runner.
func newEngine() (*engine, error) {
	store, err := configstore.NewStore(cfgDir)
	if err != nil {
		return nil, err
	}
	registry, err := store.LoadRegistry()
	if err != nil {
		return nil, err
	}
	for _, ts := range builtin.Specs() {
		if registry.Tool(ts.Name) != nil {
			// stored specs take precedence over builtins
			continue
		}
		if err := registry.AddTool(ts); err != nil {
			return nil, err
		}
	}

	dispatcher := dispatch.NewDispatcher()
	if err := builtin.Register(dispatcher.Funcs()); err != nil {
		return nil, err
	}

	return &engine{
		registry:   registry,
		store:      store,
		dispatcher: dispatcher,
		runner:     agent.NewRunner(registry, llmfactory.New(), dispatcher),
	}, nil
}

// newRunStore keeps run history in Redis when REDIS_ADDR is set, in
// process memory otherwise.
func newRunStore() runstore.RunStore {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return runstore.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return runstore.NewRedisStore(client, "adk")
}

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Registry:     eng.registry,
				Dispatcher:   eng.dispatcher,
				Runner:       eng.runner,
				Store:        eng.store,
				Runs:         newRunStore(),
				Port:         port,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 10 * time.Minute,
				Version:      version,
			})

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 8000, "port to listen on")
	return cmd
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a tool or an agent once",
	}
	cmd.AddCommand(runToolCmd(), runAgentCmd())
	return cmd
}

func runToolCmd() *cobra.Command {
	var argsJSON string
	cmd := &cobra.Command{
		Use:   "tool <name>",
		Short: "Execute a tool with JSON arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}

			tool := eng.registry.Tool(cmdArgs[0])
			if tool == nil {
				return errors.Newf("tool %s not found", cmdArgs[0])
			}

			var toolArgs map[string]any
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &toolArgs); err != nil {
					return errors.Wrap(err, "invalid --args")
				}
			}

			res := eng.dispatcher.Execute(cmd.Context(), tool, toolArgs)
			return printJSON(res)
		},
	}
	cmd.Flags().StringVar(&argsJSON, "args", "", "tool arguments as a JSON object")
	return cmd
}

func runAgentCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "agent <name>",
		Short: "Run an agent on an input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}

			run, err := eng.runner.Run(cmd.Context(), cmdArgs[0], input)
			if run != nil {
				if perr := printJSON(run); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "input text for the agent")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tools and agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}

			fmt.Println("Tools:")
			for _, name := range eng.registry.ToolNames() {
				t := eng.registry.Tool(name)
				fmt.Printf("  %-20s %-10s %s\n", t.Name, t.Type, t.Description)
			}
			fmt.Println("Agents:")
			for _, name := range eng.registry.AgentNames() {
				a := eng.registry.Agent(name)
				fmt.Printf("  %-20s %-10s %s\n", a.Name, a.LLM.Provider, a.Description)
			}
			return nil
		},
	}
}

func printJSON(v any) error {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}
	fmt.Println(string(bs))
	return nil
}
