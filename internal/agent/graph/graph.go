package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/fredgpt/server/internal/agent/graph/conversations"
	"github.com/fredgpt/server/internal/agent/graph/nodes"
	"github.com/fredgpt/server/internal/agent/graph/observers"
	"github.com/fredgpt/server/internal/agent/graph/tools"
	"github.com/fredgpt/server/internal/agent/model"
	logx "github.com/fredgpt/server/pkg/logger"
)

// Runner executes one Deliberate/Act cycle for a user message.
type Runner interface {
	Invoke(ctx context.Context, in model.RunInput) (*model.FinalResponse, error)
}

// Metrics receives model and tool call outcomes. Optional.
type Metrics interface {
	tools.Recorder
	observers.ModelRecorder
}

// Config holds everything needed to compose the full response graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the chat
// model, the messages manager and the dispatcher.
type Config struct {
	APIKey           string
	BaseURL          string
	ResponseModel    model.ResponseModelConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	Adapters         *tools.Adapters
	Metrics          Metrics
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	Dispatcher      *tools.Dispatcher
	Metrics         Metrics

	// Now stamps the system prompt; defaults to time.Now.
	Now func() time.Time
}

// GraphBuilder handles the construction of the agent conversation graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.RunInput, *model.FinalResponse]
}

type graphRunner struct {
	runnable compose.Runnable[model.RunInput, *model.FinalResponse]
	mm       *conversations.MessagesManager
	metrics  Metrics
}

func (r *graphRunner) Invoke(ctx context.Context, in model.RunInput) (*model.FinalResponse, error) {
	var recorder observers.ModelRecorder
	if r.metrics != nil {
		recorder = r.metrics
	}

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks(recorder)))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return &model.FinalResponse{Response: nodes.NoResponse}, nil
	}

	logx.Info().
		Str("conversation_id", in.ConversationID).
		Float64("total_cost_usd", out.CostUSD).
		Interface("tool_call_count", out.ToolCallCount).
		Msg("Run finished")

	if out.ToolCallCount != nil {
		if err := r.mm.SaveTurn(ctx, in.ConversationID, in.Text, out.Response); err != nil {
			logx.Error().
				Str("conversation_id", in.ConversationID).
				Err(err).
				Msg("Error saving conversation turn")
		}
	}
	return out, nil
}

// BuildResponseGraph composes the chat model, messages manager and dispatcher,
// builds the graph, and returns a Runner.
func BuildResponseGraph(ctx context.Context, cfg Config) (Runner, error) {
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		RespConfig: &cfg.ResponseModel,
	})
	if err != nil {
		return nil, err
	}

	var opts []tools.DispatcherOption
	if cfg.Metrics != nil {
		opts = append(opts, tools.WithRecorder(cfg.Metrics))
	}
	dispatcher := tools.NewDispatcher(cfg.Adapters, nodes.NormalizeMaxToolCalls(cfg.Conversation.Tools.MaxCalls), opts...)

	runner, err := NewRunner(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: conversations.NewMessagesManager(cfg.ConversationRepo),
		Dispatcher:      dispatcher,
		Metrics:         cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Response graph built successfully")
	return runner, nil
}

// NewRunner compiles the graph described by config.
func NewRunner(ctx context.Context, config *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	return &graphRunner{runnable: runnable, mm: config.MessagesManager, metrics: config.Metrics}, nil
}

// BuildGraph constructs and returns the compiled agent graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.RunInput, *model.FinalResponse], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		config.MessagesManager = conversations.NewMessagesManager(nil)
	}
	if config.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is nil")
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.RunInput, *model.FinalResponse](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := config.ChatModels.BindToolsToResponseModel(ctx, tools.Infos()); err != nil {
		return nil, err
	}
	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	if err := b.graph.AddLambdaNode(nodes.NodeInput,
		nodes.NewInputNode(b.config.MessagesManager),
		compose.WithStatePreHandler(nodes.NewInputPreHandler()),
	); err != nil {
		return fmt.Errorf("add input node: %w", err)
	}

	if err := b.graph.AddChatModelNode(nodes.NodeAgent,
		b.config.ChatModels.Response,
		compose.WithStatePreHandler(nodes.NewAgentPreHandler(b.config.Now)),
		compose.WithStatePostHandler(nodes.NewAgentPostHandler(b.config.ChatModels.ResponseModelName)),
	); err != nil {
		return fmt.Errorf("add agent node: %w", err)
	}

	if err := b.graph.AddLambdaNode(nodes.NodeTools, nodes.NewToolsNode(b.config.Dispatcher)); err != nil {
		return fmt.Errorf("add tools node: %w", err)
	}

	if err := b.graph.AddLambdaNode(nodes.NodeFinalize, nodes.NewFinalizeNode()); err != nil {
		return fmt.Errorf("add finalize node: %w", err)
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInput},
		{nodes.NodeInput, nodes.NodeAgent},
		{nodes.NodeTools, nodes.NodeAgent},
		{nodes.NodeFinalize, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	decisionBranch := compose.NewGraphBranch(
		nodes.NewAgentCondition(),
		map[string]bool{
			nodes.NodeTools:    true,
			nodes.NodeFinalize: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeAgent, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.RunInput, *model.FinalResponse], error) {
	// Every cycle is one agent and one tools step; the notice turn and the
	// input/finalize nodes need a few more.
	maxSteps := 10 + b.config.Dispatcher.Budget()*2

	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("fredgpt"),
		compose.WithMaxRunSteps(maxSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Int("max_steps", maxSteps).Msg("Graph compiled successfully")
	return runnable, nil
}
