package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	callvu "github.com/doronro/call-vu-management-studio"
	"github.com/doronro/call-vu-management-studio/conversation"
	"github.com/doronro/call-vu-management-studio/knowledge"
	"github.com/doronro/call-vu-management-studio/session"
	"github.com/doronro/call-vu-management-studio/voice"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	schemaPath := flag.String("schema", "form.cvuf", "path to form schema file")
	mode := flag.String("mode", "chat", "interaction mode: chat or voice")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	err = startApp(context.Background(), config, *schemaPath, session.Mode(*mode))
	if err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config, schemaPath string, mode session.Mode) error {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	doc, err := callvu.ParseSchema(raw)
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	extraction := callvu.Extract(doc)

	repo := buildRepository(config)
	processID := config.ProcessID
	if processID == "" {
		processID = doc.Form.Name()
	}
	trackerOpts := []session.TrackerOption{}
	if config.WebhookURL != "" {
		trackerOpts = append(trackerOpts, session.WithNotifier(session.NewWebhookNotifier(config.WebhookURL)))
	}
	tracker, err := session.StartTracker(ctx, repo, processID, mode, trackerOpts...)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	ctx = conversation.WithSessionKey(ctx, tracker.SessionID())

	stepper := conversation.NewStepper(extraction,
		conversation.WithFormName(doc.Form.Name()),
		conversation.WithSessionSink(tracker),
	)
	agentOpts := []conversation.AgentOption{}
	if mode == session.ModeVoice {
		agentOpts = append(agentOpts, conversation.WithInputInterpreter(voice.Interpret, conversation.SourceVoice))
	}
	formAgent := conversation.NewAgent(
		doc.Form.Name(),
		"An agent that walks a caller through a form one question at a time",
		stepper,
		agentOpts...,
	)

	assistant, err := buildAssistant(ctx, config)
	if err != nil {
		return err
	}

	historyStore := conversation.NewMemoryHistoryStore(conversation.KeepSystemLastNTrimmer{N: 50})
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: formAgent,
	})

	// The first run opens the conversation without consuming input.
	if err := runTurn(ctx, runner, historyStore, nil); err != nil {
		return err
	}

	parser := conversation.NewStaticCommandParser()
	reader := bufio.NewReader(os.Stdin)
	for !stepper.Completed() {
		fmt.Print("You: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("Input closed. Exiting.")
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		// Off-script questions go to the knowledge assistant; everything else
		// flows through the runner as a conversation turn.
		if cmd, rest := parser.ParseCommand(input); cmd == conversation.CommandQuestion {
			answerQuestion(ctx, assistant, stepper, doc.Form.Name(), rest)
			continue
		}
		history, aErr := historyStore.Append(ctx, schema.UserMessage(input))
		if aErr != nil {
			return aErr
		}
		if tErr := runTurn(ctx, runner, historyStore, history); tErr != nil {
			return tErr
		}
	}
	if stepper.Completed() {
		_ = historyStore.Clear(ctx)
	}
	return nil
}

func runTurn(ctx context.Context, runner *adk.Runner, historyStore *conversation.HistoryStore, history []*schema.Message) error {
	iter := runner.Run(ctx, history)
	for {
		event, ok := iter.Next()
		if !ok {
			return nil
		}
		if event.Err != nil {
			return event.Err
		}
		msg, mErr := event.Output.MessageOutput.GetMessage()
		if mErr != nil {
			return mErr
		}
		if _, aErr := historyStore.Append(ctx, msg); aErr != nil {
			return aErr
		}
		fmt.Printf("\nAssistant: %v\n======\n", msg.Content)
	}
}

func buildRepository(config *Config) session.Repository {
	local := session.NewLocalRepository(config.DataDir)
	if config.Remote == nil || config.Remote.BaseURL == "" {
		return local
	}
	remote := session.NewRemoteRepository(session.RemoteConfig{
		BaseURL: config.Remote.BaseURL,
		AppID:   config.Remote.AppID,
	})
	return session.NewFallbackRepository(remote, local)
}

func buildAssistant(ctx context.Context, config *Config) (*knowledge.Assistant, error) {
	if config.APIKey == "" {
		return nil, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return knowledge.NewAssistant(cm)
}

func answerQuestion(ctx context.Context, assistant *knowledge.Assistant, stepper *conversation.Stepper, formTitle, question string) {
	if assistant == nil {
		fmt.Printf("\nAssistant: The knowledge assistant is not configured. Let's continue with the form.\n======\n")
		return
	}
	req := &knowledge.Request{
		FormTitle: formTitle,
		Question:  question,
	}
	if field, ok := stepper.CurrentField(); ok {
		req.CurrentQuestion = field.Label
	}
	answer, err := assistant.Ask(ctx, req)
	if err != nil {
		fmt.Printf("\nAssistant: I couldn't answer that right now. Let's continue with the form.\n======\n")
		slog.Warn("knowledge assistant failed", "error", err)
		return
	}
	fmt.Printf("\nAssistant: %s\n======\n", answer.Answer)
}
