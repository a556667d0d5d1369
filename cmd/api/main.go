package main

import (
	"context"
	"log"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"chaser-agent-backend/internal/ai"
	"chaser-agent-backend/internal/auth"
	"chaser-agent-backend/internal/automation"
	"chaser-agent-backend/internal/config"
	"chaser-agent-backend/internal/db"
	"chaser-agent-backend/internal/email"
	"chaser-agent-backend/internal/reminders"
	"chaser-agent-backend/internal/rules"
	"chaser-agent-backend/internal/tasks"
	"chaser-agent-backend/internal/workflow"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] no .env file found, relying on environment")
	}

	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal("❌ Failed to connect DB:", err)
	}
	defer database.Close()

	log.Println("✅ Connected to PostgreSQL!")

	// ----- email transport -----
	var sender email.Sender
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err == nil && cfg.SESFrom != "" {
		ses, sesErr := email.NewSESSender(awsCfg, cfg.SESFrom)
		if sesErr != nil {
			log.Fatal("❌ SES setup failed:", sesErr)
		}
		sender = ses
		log.Println("✅ SES email sender ready")
	} else {
		sender = email.LogSender{}
		log.Println("[WARN] SES not configured, emails will be logged only")
	}

	// ----- collaborators -----
	var generator reminders.Generator
	if cfg.GroqKey != "" {
		generator = ai.New(cfg.GroqKey, cfg.GroqModel)
		log.Println("✅ AI message generation enabled (" + cfg.GroqModel + ")")
	} else {
		log.Println("[WARN] GROQ_API_KEY not set, using template messages only")
	}

	var hook *workflow.Client
	if cfg.WorkflowWebhookURL != "" {
		hook = workflow.New(cfg.WorkflowWebhookURL)
	}

	taskStore := tasks.NewStore(database)
	ruleStore := rules.NewStore(database)
	logStore := reminders.NewLogStore(database)

	dispatcher := &reminders.Dispatcher{
		Tasks:  taskStore,
		Logs:   logStore,
		AI:     generator,
		Email:  sender,
		AppURL: cfg.AppURL,
	}
	if hook != nil {
		dispatcher.Hook = hook
	}

	runner := &automation.Runner{
		Tasks:      taskStore,
		Rules:      ruleStore,
		Dispatcher: dispatcher,
		Email:      sender,
		DB:         database,
		AppURL:     cfg.AppURL,
	}
	if hook != nil {
		runner.Hook = hook
	}

	secret := []byte(cfg.JWTSecret)
	authed := auth.New(secret)

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH API -----
	mux.HandleFunc("/auth/register", postOnly(auth.RegisterHandler(database, secret)))
	mux.HandleFunc("/auth/login", postOnly(auth.LoginHandler(database, secret)))
	mux.HandleFunc("/auth/me", authed.Wrap(auth.MeHandler(database)))

	// ----- TASKS API -----
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			authed.Wrap(tasks.GetTasksHandler(taskStore))(w, r)
		case http.MethodPost:
			authed.Wrap(tasks.CreateTaskHandler(taskStore, hook))(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/task/update", authed.Wrap(tasks.UpdateTaskHandler(taskStore)))
	mux.HandleFunc("/task/status", authed.Wrap(tasks.SetTaskStatusHandler(taskStore)))
	mux.HandleFunc("/task/delete", authed.Wrap(tasks.DeleteTaskHandler(taskStore)))
	mux.HandleFunc("/task/comment", authed.Wrap(tasks.AddCommentHandler(taskStore, database)))
	mux.HandleFunc("/task/comments", authed.Wrap(tasks.GetCommentsHandler(taskStore)))

	// ----- REMINDERS API -----
	mux.HandleFunc("/tasks/remind", authed.Wrap(reminders.RemindTaskHandler(taskStore, dispatcher)))
	mux.HandleFunc("/reminders/bulk", authed.Wrap(reminders.BulkRemindHandler(taskStore, dispatcher)))
	mux.HandleFunc("/reminders/logs", authed.Wrap(reminders.GetLogsHandler(logStore)))

	// ----- AUTOMATION RULES API -----
	mux.HandleFunc("/rules", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			authed.Wrap(rules.GetRulesHandler(ruleStore))(w, r)
		case http.MethodPost:
			authed.Wrap(rules.CreateRuleHandler(ruleStore))(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/rule/update", authed.Wrap(rules.UpdateRuleHandler(ruleStore)))
	mux.HandleFunc("/rule/delete", authed.Wrap(rules.DeleteRuleHandler(ruleStore)))

	// ----- CRON + WEBHOOK TRIGGERS -----
	mux.HandleFunc("/cron/check-overdue", automation.CheckOverdueHandler(runner, cfg.CronSecret))
	mux.HandleFunc("/cron/run-automation", automation.RunAutomationHandler(runner, cfg.CronSecret))
	mux.HandleFunc("/webhooks/workflow", automation.WorkflowWebhookHandler(runner, cfg.WebhookSecret))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "x-cron-secret", "x-webhook-secret"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	log.Println("🚀 Chaser Agent API is running on :8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}

func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			next(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
