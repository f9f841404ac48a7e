package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"crosswarped.com/nonogrid"
	"crosswarped.com/nonogrid/pkg/primitives"
)

type SolvePuzzleRequest struct {
	Rows     []primitives.Clue `json:"rows"`
	Cols     []primitives.Clue `json:"cols"`
	PuzzleID string            `json:"puzzleId"`
}

type SolvePuzzleResponse struct {
	Success      bool   `json:"success"`
	RequestID    string `json:"requestId"`
	Solved       bool   `json:"solved"`
	Board        string `json:"board,omitempty"`
	UnsolvedRows []int  `json:"unsolvedRows,omitempty"`
	UnsolvedCols []int  `json:"unsolvedCols,omitempty"`
	Error        string `json:"error,omitempty"`
}

func getPuzzle(ctx context.Context, puzzleID string) (nonogrid.Rules, error) {
	var rules nonogrid.Rules

	client, err := bigquery.NewClient(ctx, "nonogrid-x")
	if err != nil {
		return rules, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	defer client.Close()

	query := fmt.Sprintf("SELECT rules_json FROM `nonogrid-x.FirestoreQuery.all_puzzles` WHERE puzzle_id = %q", puzzleID)
	q := client.Query(query)
	q.Location = "US"

	job, err := q.Run(ctx)
	if err != nil {
		return rules, fmt.Errorf("q.Run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return rules, fmt.Errorf("job.Wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return rules, fmt.Errorf("status.Err: %w", err)
	}
	it, err := job.Read(ctx)
	if err != nil {
		return rules, fmt.Errorf("job.Read: %w", err)
	}

	var row []bigquery.Value
	err = it.Next(&row)
	if err == iterator.Done {
		return rules, fmt.Errorf("puzzle %q not found", puzzleID)
	}
	if err != nil {
		return rules, fmt.Errorf("it.Next: %w", err)
	}

	data, ok := row[0].(string)
	if !ok {
		return rules, fmt.Errorf("row[0] is not a string: %v", row[0])
	}
	if err := json.Unmarshal([]byte(data), &rules); err != nil {
		return rules, fmt.Errorf("decode puzzle %q: %w", puzzleID, err)
	}
	return rules, nil
}

func execute(ctx context.Context, req SolvePuzzleRequest) (*nonogrid.Solution, error) {
	rules := nonogrid.Rules{Rows: req.Rows, Cols: req.Cols}

	if req.PuzzleID != "" {
		if len(rules.Rows) > 0 || len(rules.Cols) > 0 {
			return nil, fmt.Errorf("puzzleId and inline clues are mutually exclusive")
		}
		var err error
		if rules, err = getPuzzle(ctx, req.PuzzleID); err != nil {
			return nil, fmt.Errorf("getPuzzle: %w", err)
		}
		fmt.Printf("Loaded puzzle %q: %d rows, %d columns\n", req.PuzzleID, len(rules.Rows), len(rules.Cols))
	}

	deadline, ok := ctx.Deadline()
	timeout := 1 * time.Minute
	if ok {
		timeout = time.Until(deadline) - 5*time.Second
		fmt.Printf("Setting timeout to %v\n", timeout)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return nonogrid.Solve(ctx, rules)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Content-Type", "application/json")
}

func solvePuzzle(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers
	setCORSHeaders(w)

	// Handle OPTIONS request for CORS preflight
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		fmt.Fprintf(w, `{"success": false, "error": "Method %s not allowed"}`, r.Method)
		return
	}

	requestID := uuid.New().String()

	var req SolvePuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fmt.Printf("Error parsing JSON body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		response := SolvePuzzleResponse{
			Success:   false,
			RequestID: requestID,
			Error:     fmt.Sprintf("Invalid JSON: %v", err),
		}
		json.NewEncoder(w).Encode(response)
		return
	}

	solution, err := execute(r.Context(), req)

	response := SolvePuzzleResponse{
		RequestID: requestID,
	}

	var unsolvable *nonogrid.UnsolvableError
	switch {
	case errors.As(err, &unsolvable):
		// The engine answered; the answer is that propagation is not enough.
		response.Success = true
		response.Solved = false
		response.Board = solution.Board.Repr()
		response.UnsolvedRows = solution.UnsolvedRows
		response.UnsolvedCols = solution.UnsolvedCols
		response.Error = unsolvable.Reason
	case err != nil:
		response.Success = false
		response.Error = err.Error()
	default:
		response.Success = true
		response.Solved = solution.Solved
		response.Board = solution.Board.Repr()
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Printf("Error marshaling response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"success": false, "error": "Internal server error"}`)
		return
	}
}

func main() {
	funcframework.RegisterHTTPFunction("/solve-puzzle", solvePuzzle)

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	hostname := ""
	if localOnly := os.Getenv("LOCAL_ONLY"); localOnly == "true" {
		hostname = "127.0.0.1"
	}
	if err := funcframework.StartHostPort(hostname, port); err != nil {
		log.Fatalf("funcframework.StartHostPort: %v\n", err)
	}
}
