package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFileNotifierAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	notifier := NewFileNotifier(path)

	first := NewEvent("Service checkout restarted due to high memory usage")
	second := NewEvent("Service checkout scaled up due to high CPU usage")

	if err := notifier.Notify(context.Background(), first); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	if err := notifier.Notify(context.Background(), second); err != nil {
		t.Fatalf("second notify: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open notifications: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(events)+1, err)
		}
		events = append(events, event)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 records, got %d", len(events))
	}
	if events[0].Message != first.Message || events[1].Message != second.Message {
		t.Fatalf("records out of order: %+v", events)
	}
	for i, event := range events {
		if event.Source != Source {
			t.Fatalf("record %d: missing source, got %q", i, event.Source)
		}
		if event.ID == "" || event.Timestamp.IsZero() {
			t.Fatalf("record %d is not self-contained: %+v", i, event)
		}
	}
}

func TestFileNotifierReplaySafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	notifier := NewFileNotifier(path)

	event := NewEvent("Service checkout rolled back due to high error rate")
	// Appending the same record twice must leave both lines parseable.
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Fatalf("replay notify: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open notifications: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lines := 0
	for scanner.Scan() {
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("corrupt record after replay: %v", err)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}
