// Command legalchat is a terminal client for the contract-review chat
// server: send one question with optional attachments and print the
// reply, or run an interactive loop.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/riorio-tech/legalchatbot/pkg/chatclient"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		server      = flag.String("server", "http://localhost:8080", "Server base URL")
		message     = flag.String("message", "", "Question to send (omit for interactive mode)")
		custom      = flag.String("instruction", "", "Additional instruction for the model")
		showDebug   = flag.Bool("debug", false, "Print the server debug payload")
		showVersion = flag.Bool("version", false, "Show version")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("legalchat version %s\n", version)
		return nil
	}

	conv := chatclient.New(strings.TrimSuffix(*server, "/") + "/api/chat")

	attachments, err := loadAttachments(flag.Args())
	if err != nil {
		return err
	}

	if *message != "" || len(attachments) > 0 || *custom != "" {
		return sendOnce(conv, *message, *custom, attachments, *showDebug)
	}

	return interactive(conv, *showDebug)
}

func sendOnce(conv *chatclient.Conversation, message, custom string, attachments []chatclient.Attachment, showDebug bool) error {
	reply, err := conv.Send(context.Background(), message, custom, attachments)
	if err != nil {
		return err
	}
	if reply == nil {
		return fmt.Errorf("nothing to send")
	}
	fmt.Println(reply.Content)
	if showDebug {
		printDebug(conv)
	}
	return nil
}

func interactive(conv *chatclient.Conversation, showDebug bool) error {
	fmt.Println("契約書レビューAI (Ctrl-D で終了)")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := scanner.Text()
		reply, err := conv.Send(context.Background(), line, "", nil)
		if err != nil {
			return err
		}
		if reply == nil {
			continue
		}
		fmt.Println(reply.Content)
		if showDebug {
			printDebug(conv)
		}
	}
}

func loadAttachments(paths []string) ([]chatclient.Attachment, error) {
	var attachments []chatclient.Attachment
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %s: %w", path, err)
		}
		attachments = append(attachments, chatclient.Attachment{
			Name:     filepath.Base(path),
			MIMEType: mime.TypeByExtension(filepath.Ext(path)),
			Data:     data,
		})
	}
	return attachments, nil
}

func printDebug(conv *chatclient.Conversation) {
	dbg := conv.LastDebug()
	if dbg == nil {
		return
	}
	if len(dbg.ExtractedTexts) > 0 {
		fmt.Println("--- extracted text ---")
		fmt.Println(strings.Join(dbg.ExtractedTexts, "\n---\n"))
	}
	if dbg.AssembledPrompt != "" {
		fmt.Println("--- assembled prompt ---")
		fmt.Println(dbg.AssembledPrompt)
	}
	if dbg.UpstreamStatus != 0 {
		fmt.Printf("--- upstream: %d %s ---\n", dbg.UpstreamStatus, dbg.UpstreamStatusText)
	}
}
