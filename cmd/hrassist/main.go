// Command hrassist runs the HR knowledge assistant: ask questions from the
// terminal, ingest documents into the knowledge base, inspect routing, or
// serve the assistant over MCP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	openaisdk "github.com/openai/openai-go/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adanianlabs/hrassist/analytics"
	analyticspg "github.com/adanianlabs/hrassist/analytics/pg"
	"github.com/adanianlabs/hrassist/config"
	claudeprovider "github.com/adanianlabs/hrassist/contrib/provider/claude"
	geminiprovider "github.com/adanianlabs/hrassist/contrib/provider/gemini"
	openaiprovider "github.com/adanianlabs/hrassist/contrib/provider/openai"

	geminiembed "github.com/adanianlabs/hrassist/contrib/embedder/gemini"
	openaiembed "github.com/adanianlabs/hrassist/contrib/embedder/openai"

	"github.com/adanianlabs/hrassist/history"
	historystore "github.com/adanianlabs/hrassist/history/store"
	"github.com/adanianlabs/hrassist/ingest"
	"github.com/adanianlabs/hrassist/kb"
	kbinmemory "github.com/adanianlabs/hrassist/kb/inmemory"
	kbpg "github.com/adanianlabs/hrassist/kb/pg"
	"github.com/adanianlabs/hrassist/llm"
	"github.com/adanianlabs/hrassist/mcpserver"
	"github.com/adanianlabs/hrassist/pkg/logging"
	"github.com/adanianlabs/hrassist/pkg/telemetry"
	"github.com/adanianlabs/hrassist/rag"
	"github.com/adanianlabs/hrassist/router"
	"github.com/adanianlabs/hrassist/vector"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "hrassist",
		Environment: envOr("HRASSIST_ENV", "development"),
	})
	if err != nil {
		fatal(fmt.Errorf("init telemetry: %w", err))
	}
	defer shutdown(ctx)

	switch os.Args[1] {
	case "ask":
		err = runAsk(ctx, cfg, os.Args[2:])
	case "route":
		err = runRoute(os.Args[2:])
	case "ingest":
		err = runIngest(ctx, cfg, os.Args[2:])
	case "stats":
		err = runStats(ctx, cfg)
	case "history":
		err = runHistory(ctx, cfg, os.Args[2:])
	case "mcp":
		err = runMCP(ctx, cfg)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: hrassist <command> [flags]

commands:
  ask      answer a question from the knowledge base or HR metrics
  route    classify a question without answering it
  ingest   load documents into the knowledge base
  stats    show knowledge base statistics
  history  show or clear recent exchanges for a session
  mcp      serve the assistant over MCP on stdio`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "hrassist:", err)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runAsk(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	session := fs.String("session", "cli", "session identifier for conversation history")
	noSources := fs.Bool("no-sources", false, "omit source chunks from the output")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("ask: question is required")
	}
	question := strings.Join(fs.Args(), " ")

	r, _, cleanup, err := buildRouter(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	hist, err := buildHistory(cfg)
	if err != nil {
		return err
	}
	defer hist.Close()

	var askOpts []rag.AskOption
	if *noSources {
		askOpts = append(askOpts, rag.WithoutSources())
	}

	ctx, span := otel.Tracer("hrassist/cmd").Start(ctx, "ask",
		trace.WithAttributes(attribute.String("session", *session)))
	answer := r.Ask(ctx, question, askOpts...)
	span.SetAttributes(
		attribute.String("query_type", answer.QueryType),
		attribute.Float64("confidence", float64(answer.ConfidenceScore)),
	)
	telemetry.End(span, nil)

	if err := hist.Append(ctx, &history.Exchange{
		SessionID:       *session,
		Question:        question,
		Answer:          answer.Answer,
		QueryType:       answer.QueryType,
		DataType:        answer.DataType,
		ConfidenceScore: answer.ConfidenceScore,
	}); err != nil {
		logging.Logger().Warn("failed to record exchange", "error", err)
	}

	fmt.Println(answer.Answer)
	fmt.Printf("\n[%s | confidence %.2f | sources %d | coverage %s]\n",
		answer.ConfidenceLevel, answer.ConfidenceScore, answer.SourcesUsed, answer.Coverage)
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	session := fs.String("session", "cli", "session identifier")
	limit := fs.Int("limit", 10, "number of exchanges to show")
	clear := fs.Bool("clear", false, "clear the session instead of listing it")
	fs.Parse(args)

	hist, err := buildHistory(cfg)
	if err != nil {
		return err
	}
	defer hist.Close()

	if *clear {
		if err := hist.ClearSession(ctx, *session); err != nil {
			return fmt.Errorf("clear session %s: %w", *session, err)
		}
		fmt.Printf("cleared session %s\n", *session)
		return nil
	}

	exchanges, err := hist.Recent(ctx, *session, *limit)
	if err != nil {
		return fmt.Errorf("load session %s: %w", *session, err)
	}
	if len(exchanges) == 0 {
		fmt.Printf("no exchanges recorded for session %s\n", *session)
		return nil
	}
	for _, ex := range exchanges {
		fmt.Printf("[%s] Q: %s\n    A: %s\n", ex.CreatedAt.Format("2006-01-02 15:04"), ex.Question, ex.Answer)
	}
	return nil
}

func runRoute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("route: question is required")
	}
	decision := router.Route(strings.Join(args, " "))
	payload, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}

func runIngest(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	title := fs.String("title", "", "article title (defaults to the file name)")
	tags := fs.String("tags", "", "comma-separated tags")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("ingest: at least one file is required")
	}

	client, cleanup, err := buildKB(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, path := range fs.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		body := string(raw)
		if strings.HasSuffix(strings.ToLower(path), ".html") || strings.HasSuffix(strings.ToLower(path), ".htm") {
			body, err = ingest.HTMLToText(body)
			if err != nil {
				return fmt.Errorf("extract %s: %w", path, err)
			}
		}
		body = ingest.Prepare(body)

		articleTitle := *title
		if articleTitle == "" {
			articleTitle = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		article := &kb.Article{Title: articleTitle, Body: body}
		if *tags != "" {
			for _, tag := range strings.Split(*tags, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					article.Tags = append(article.Tags, tag)
				}
			}
		}

		id, err := client.Ingest(ctx, article)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		fmt.Printf("ingested %s as article %s\n", path, id)
	}
	return nil
}

func runStats(ctx context.Context, cfg *config.Config) error {
	client, cleanup, err := buildKB(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("articles: %d\nchunks: %d\navg chunks/article: %.1f\n",
		stats.TotalArticles, stats.TotalChunks, stats.AvgChunksPerArticle)
	return nil
}

func runMCP(ctx context.Context, cfg *config.Config) error {
	r, client, cleanup, err := buildRouter(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := mcpserver.NewServer(r, client)
	return server.Run(ctx, &mcp.StdioTransport{})
}

// buildKB wires the embedder and chunk store into a knowledge-base client.
func buildKB(ctx context.Context, cfg *config.Config) (*kb.Client, func(), error) {
	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var store kb.Store
	cleanup := func() {}
	switch cfg.KBBackend {
	case "postgres":
		pgStore, err := kbpg.New(&kbpg.Config{
			Host:      cfg.PostgresHost,
			Port:      cfg.PostgresPort,
			User:      cfg.PostgresUser,
			Password:  cfg.PostgresPassword,
			DBName:    cfg.PostgresDB,
			SSLMode:   cfg.PostgresSSLMode,
			Dimension: cfg.EmbeddingDimension,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect knowledge base: %w", err)
		}
		store = pgStore
		cleanup = func() { pgStore.Close() }
	default:
		store = kbinmemory.New()
	}

	client, err := kb.NewClient(store, embedder)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return client, cleanup, nil
}

func buildEmbedder(ctx context.Context, cfg *config.Config) (vector.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return openaiembed.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL,
			openaisdk.EmbeddingModelTextEmbedding3Small, cfg.EmbeddingDimension), nil
	default:
		// Claude has no embedding endpoint; Gemini embeddings cover both the
		// gemini and claude providers.
		apiKey := cfg.GeminiAPIKey
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for embeddings with provider %q", cfg.Provider)
		}
		return geminiembed.New(ctx, apiKey, cfg.EmbeddingDimension,
			geminiembed.WithModel(cfg.EmbeddingModel))
	}
}

func buildLLM(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.Provider {
	case "openai":
		return openaiprovider.New(openaiprovider.DefaultConfig(cfg.OpenAIAPIKey)), nil
	case "claude":
		return claudeprovider.New(claudeprovider.DefaultConfig(cfg.AnthropicAPIKey)), nil
	default:
		return geminiprovider.New(ctx, geminiprovider.DefaultConfig(cfg.GeminiAPIKey))
	}
}

// buildRouter assembles the full ask path: provider, knowledge base, answer
// engine, analytics, and router.
func buildRouter(ctx context.Context, cfg *config.Config) (*router.Router, *kb.Client, func(), error) {
	client, kbCleanup, err := buildKB(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		kbCleanup()
		return nil, nil, nil, err
	}

	engine, err := rag.NewEngine(llmClient, client)
	if err != nil {
		kbCleanup()
		return nil, nil, nil, err
	}

	cleanup := kbCleanup
	var svc analytics.Service
	pgSvc, err := analyticspg.New(&analyticspg.Config{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		// Data queries degrade to an apologetic envelope instead of failing
		// startup; document queries remain fully functional.
		logging.Logger().Warn("analytics unavailable", "error", err)
		svc = unavailableAnalytics{err: err}
	} else {
		svc = pgSvc
		cleanup = func() {
			pgSvc.Close()
			kbCleanup()
		}
	}

	r, err := router.New(engine, svc)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return r, client, cleanup, nil
}

func buildHistory(cfg *config.Config) (history.Store, error) {
	switch cfg.HistoryBackend {
	case "redis":
		return historystore.NewRedisStore(&historystore.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "hrassist:history:",
		}), nil
	case "mongo":
		return historystore.NewMongoStore(&historystore.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   "hrassist",
			Collection: "exchanges",
		})
	case "postgres":
		return historystore.NewPostgresStore(&historystore.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			DBName:   cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSLMode,
		})
	default:
		return historystore.NewInMemoryStore(), nil
	}
}

// unavailableAnalytics reports the connection failure to every query so the
// router can surface it in the answer envelope.
type unavailableAnalytics struct {
	err error
}

func (u unavailableAnalytics) CurrentHeadcount(context.Context) (*analytics.HeadcountReport, error) {
	return nil, u.err
}
func (u unavailableAnalytics) Trends(context.Context, int) (*analytics.HeadcountTrends, error) {
	return nil, u.err
}
func (u unavailableAnalytics) Attrition(context.Context, int) (*analytics.AttritionReport, error) {
	return nil, u.err
}
func (u unavailableAnalytics) ProbationAlerts(context.Context) (*analytics.ProbationReport, error) {
	return nil, u.err
}
func (u unavailableAnalytics) AppraisalStatus(context.Context) (*analytics.AppraisalReport, error) {
	return nil, u.err
}
func (u unavailableAnalytics) ContractExpiryAlerts(context.Context, int) (*analytics.ContractReport, error) {
	return nil, u.err
}
func (u unavailableAnalytics) DashboardSummary(context.Context) (*analytics.DashboardSummary, error) {
	return nil, u.err
}
