package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/utkarsh5026/batchq/internal/logging"
	"github.com/utkarsh5026/batchq/queue"
	"go.uber.org/zap"
)

var errUnexpectedStatus = errors.New("unexpected status")

type fetchOptions struct {
	file     string
	timeout  time.Duration
	progress bool
}

// fetchResult is the value of a successful fetch.
type fetchResult struct {
	Status int
	Bytes  int64
}

func (r fetchResult) String() string {
	return fmt.Sprintf("%d (%d bytes)", r.Status, r.Bytes)
}

func newFetchCmd(a *app) *cobra.Command {
	opts := fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch [urls...]",
		Short: "GET a list of URLs with bounded concurrency",
		Long: `fetch issues one HTTP GET per URL. URLs come from the arguments and,
with --file, from a file holding one URL per line (blank lines and lines
starting with # are ignored). Non-2xx responses count as failures and are
retried like any other error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read URLs from this file, - for stdin")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-attempt request timeout")
	cmd.Flags().BoolVar(&opts.progress, "progress", true, "show a progress bar on stderr")
	return cmd
}

// readURLs parses one URL per line.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}
	return urls, nil
}

func collectURLs(cmd *cobra.Command, args []string, file string) ([]string, error) {
	urls := append([]string(nil), args...)
	if file == "" {
		return urls, nil
	}

	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open url file: %w", err)
		}
		defer f.Close()
		r = f
	}

	fromFile, err := readURLs(r)
	if err != nil {
		return nil, err
	}
	return append(urls, fromFile...), nil
}

// fetcher returns a mapper that GETs its URL and drains the body.
func fetcher(client *http.Client) queue.Mapper[string, fetchResult] {
	return func(ctx context.Context, url string, index int) (fetchResult, error) {
		logging.FromContext(ctx).Debug("fetching", zap.Int("index", index), zap.String("url", url))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fetchResult{}, fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fetchResult{}, err
		}
		defer resp.Body.Close()

		n, err := io.Copy(io.Discard, resp.Body)
		if err != nil {
			return fetchResult{}, fmt.Errorf("read body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fetchResult{}, fmt.Errorf("%w: %s", errUnexpectedStatus, resp.Status)
		}
		return fetchResult{Status: resp.StatusCode, Bytes: n}, nil
	}
}

func (a *app) runFetch(cmd *cobra.Command, args []string, opts fetchOptions) error {
	urls, err := collectURLs(cmd, args, opts.file)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return errors.New("no urls given: pass them as arguments or with --file")
	}

	bar := a.progressBar(cmd, opts.progress, len(urls), "fetch")
	qopts, err := a.executorOptions("fetch", bar)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: opts.timeout}
	exec := queue.New[string, fetchResult](qopts...).SetData(urls)
	outcomes, runErr := exec.Every(cmd.Context(), fetcher(client))
	if bar != nil {
		_ = bar.Finish()
	}
	if errors.Is(runErr, queue.ErrInvalidConcurrency) {
		return runErr
	}

	out := cmd.OutOrStdout()
	renderResults(out, buildRows(urls, outcomes, fetchResult.String))
	renderStats(out, exec.Stats())
	return runErr
}
