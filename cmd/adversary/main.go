package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/trustvector/adversary/internal/logger"
	"github.com/trustvector/adversary/pkg/attack"
	"github.com/trustvector/adversary/pkg/blueteam"
	"github.com/trustvector/adversary/pkg/classifier"
	"github.com/trustvector/adversary/pkg/config"
	"github.com/trustvector/adversary/pkg/redteam"
	"github.com/trustvector/adversary/pkg/types"
)

// demoClassifier is a keyword heuristic standing in for a real model so the
// engine can be exercised from the command line without one.
func demoClassifier(_ context.Context, text string) (types.Prediction, error) {
	spamWords := []string{"free", "win", "winner", "prize", "click", "urgent", "money", "offer"}
	lower := strings.ToLower(text)
	hits := 0
	for _, word := range spamWords {
		if strings.Contains(lower, word) {
			hits++
		}
	}
	if hits >= 2 {
		score := 0.6 + 0.1*float64(hits)
		if score > 0.99 {
			score = 0.99
		}
		return types.Prediction{Label: types.LabelSpam, Score: score}, nil
	}
	if hits == 1 {
		return types.Prediction{Label: types.LabelSpam, Score: 0.55}, nil
	}
	return types.Prediction{Label: types.LabelNotSpam, Score: 0.85}, nil
}

func main() {
	mode := flag.String("mode", "pipeline", "attack | robustness | chain | pipeline")
	text := flag.String("text", "URGENT! You have won a FREE prize. Click here to claim your money!", "input text")
	vector := flag.String("vector", attack.CharacterObfuscationName, "attack vector for -mode attack")
	configPath := flag.String("config", "config", "config directory")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()

	log := logger.NewLogger(cfg.LogLevel)

	predict := classifier.WithBreaker(
		classifier.WithTimeout(demoClassifier, time.Duration(cfg.Classifier.TimeoutMS)*time.Millisecond),
		cfg.Classifier.BreakerName,
		time.Duration(cfg.Classifier.BreakerCooldownMS)*time.Millisecond,
		cfg.Classifier.BreakerMaxFailures,
	)

	ctx := context.Background()
	engine := redteam.NewEngine(log)

	var out interface{}
	var err error

	switch *mode {
	case "attack":
		out, err = engine.ExecuteAttack(*vector, *text, cfg.Attack)
	case "robustness":
		out, err = engine.TestModelRobustness(ctx, predict, []string{*text}, cfg.Robustness)
	case "chain":
		orchestrator := redteam.NewOrchestrator(log, engine, predict)
		out, err = orchestrator.RunChain(ctx, *text, cfg.Chain)
	case "pipeline":
		pipeline := blueteam.NewPipeline(log, nil, cfg.Pipeline)
		out, err = pipeline.ProcessIncomingText(ctx, *text, predict)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(1)
	}

	if err != nil {
		log.WithError(err).Fatal("run failed")
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.WithError(err).Fatal("encoding result failed")
	}
	fmt.Println(string(encoded))
}
