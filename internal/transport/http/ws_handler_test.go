package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

func TestWebSocketLeaderboardStream(t *testing.T) {
	service := app.NewQuizService(memory.NewSeededQuizStore(sampleQuiz()), memory.NewAttemptStore())
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/leaderboard", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard?quizId=quiz-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot: empty board.
	msgType, entries := readBoard(t, conn)
	if msgType != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msgType)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty initial board, got %+v", entries)
	}

	// A new submission pushes a fresh snapshot.
	if _, err := service.SubmitAttempt(context.Background(), app.Submission{
		QuizID:  "quiz-1",
		Answers: domain.AnswerMap{"q1": domain.SingleAnswer("Hyper Text Markup Language")},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, entries = readBoard(t, conn)
	if len(entries) != 1 || entries[0].Score != 50 {
		t.Fatalf("expected one entry at 50, got %+v", entries)
	}
}

func TestWebSocketUnknownQuizRejected(t *testing.T) {
	service := app.NewQuizService(memory.NewSeededQuizStore(sampleQuiz()), memory.NewAttemptStore())
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/leaderboard", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard?quizId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown quiz")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 rejection, got %+v", resp)
	}
}

func readBoard(t *testing.T, conn *websocket.Conn) (string, []domain.LeaderboardEntry) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string                    `json:"type"`
		Payload []domain.LeaderboardEntry `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}
