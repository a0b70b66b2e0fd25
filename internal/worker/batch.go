package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kfadel/claimlens/internal/model"
)

// Analyzer analyzes one post; implemented by the pipeline
type Analyzer interface {
	AnalyzePost(ctx context.Context, text, url string) (*model.PostAnalysis, error)
}

// AnalyzeJob analyzes a single post text
type AnalyzeJob struct {
	Text     string
	Analyzer Analyzer
}

// Execute runs the analysis
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	analysis, err := j.Analyzer.AnalyzePost(ctx, j.Text, "")
	return &AnalyzeResult{
		Text:     j.Text,
		Analysis: analysis,
		Error:    err,
	}
}

// AnalyzeResult is the outcome of analyzing one post
type AnalyzeResult struct {
	Text     string
	Analysis *model.PostAnalysis
	Error    error
}

// GetError returns the analysis error, if any
func (r *AnalyzeResult) GetError() error { return r.Error }

// BatchProcessor analyzes multiple posts concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given concurrency
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessPosts analyzes the given post texts concurrently
func (b *BatchProcessor) ProcessPosts(ctx context.Context, posts []string) []*AnalyzeResult {
	if len(posts) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, post := range posts {
		pool.Submit(&AnalyzeJob{Text: post, Analyzer: b.analyzer})
	}

	results := pool.Wait()

	analyzeResults := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		analyzeResults[i] = result.(*AnalyzeResult)
	}
	return analyzeResults
}

// ProcessFile reads posts from a file (one per line) and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*AnalyzeResult, error) {
	posts, err := ReadPostsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}
	return b.ProcessPosts(ctx, posts), nil
}

// ReadPostsFromFile reads one post per line, skipping blanks and # comments
// and deduplicating identical lines
func ReadPostsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var posts []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			posts = append(posts, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return posts, nil
}
