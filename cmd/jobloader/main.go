// Offline job loader for matchmaker.
// Reads a JSON array of job postings, ensures the FT indexes exist and
// ingests the postings through the regular validation and embedding
// pipeline with a small worker pool.
//
// Usage:
//
//	jobloader -file jobs.json -workers 4
//
// Configuration comes from the same config/<ENV>.yaml the API server uses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/matchmaker/internal/config"
	dbRedis "github.com/kailas-cloud/matchmaker/internal/db/redis"
	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/lexicon"
	logpkg "github.com/kailas-cloud/matchmaker/internal/logger"
	"github.com/kailas-cloud/matchmaker/internal/repository/embcache"
	jobsrepo "github.com/kailas-cloud/matchmaker/internal/repository/jobs"
	vectorsrepo "github.com/kailas-cloud/matchmaker/internal/repository/vectors"
	openaiTransport "github.com/kailas-cloud/matchmaker/internal/transport/openai"
	ingestuc "github.com/kailas-cloud/matchmaker/internal/usecase/ingest"
)

type flags struct {
	file    string
	workers int
}

func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.file, "file", "jobs.json", "path to a JSON array of job postings")
	flag.IntVar(&f.workers, "workers", 4, "number of parallel ingest workers")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, f); err != nil {
		cancel()
		log.Fatal(err)
	}
}

func run(ctx context.Context, f flags) error {
	start := time.Now()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	jobs, err := readJobs(f.file)
	if err != nil {
		return err
	}
	log.Printf("read %d jobs from %s", len(jobs), f.file)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	if !cfg.Embedding.CacheOff {
		embedder = embcache.New(embedder, store, nil, logger)
	}

	jobsRepo := jobsrepo.New(store, cfg.Search.MaxStructured)
	vectorsRepo := vectorsrepo.New(store, cfg.Embedding.Dimensions, cfg.Search.MaxSemantic).
		WithHNSW(vectorsrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})

	if err := ingestuc.EnsureIndexes(ctx, store, jobsrepo.IndexDefinition(), vectorsRepo.IndexDefinition()); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	svc := ingestuc.New(jobsRepo, vectorsRepo, embedder, lexicon.Default(), logger)

	processed, failed := loadJobs(ctx, svc, jobs, f.workers)

	elapsed := time.Since(start)
	log.Printf("DONE in %s", elapsed.Round(time.Second))
	log.Printf("  jobs: %d ingested, %d failed", processed, failed)
	if elapsed.Seconds() > 0 {
		log.Printf("  rate: %.1f jobs/sec", float64(processed)/elapsed.Seconds())
	}
	if failed > 0 {
		return fmt.Errorf("%d jobs failed to ingest", failed)
	}
	return nil
}

// readJobs decodes the input file and assigns IDs to postings without one.
func readJobs(path string) ([]*domain.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var jobs []*domain.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, job := range jobs {
		if job.JobID == "" {
			job.JobID = uuid.NewString()
		}
	}
	return jobs, nil
}

// loadJobs fans the postings out to a worker pool. Each job goes through the
// full ingest pipeline (validation, canonicalization, embedding).
func loadJobs(ctx context.Context, svc *ingestuc.Service, jobs []*domain.Job, workers int) (int64, int64) {
	if workers < 1 {
		workers = 1
	}

	in := make(chan *domain.Job, workers*2)
	var wg sync.WaitGroup
	var processed, failed atomic.Int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range in {
				if err := svc.Ingest(ctx, job); err != nil {
					log.Printf("worker %d: job %s failed: %v", workerID, job.JobID, err)
					failed.Add(1)
					continue
				}
				total := processed.Add(1)
				if total%100 == 0 {
					log.Printf("jobs: %d ingested, %d failed", total, failed.Load())
				}
			}
		}(i)
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			log.Println("interrupted, draining workers")
			close(in)
			wg.Wait()
			return processed.Load(), failed.Load()
		case in <- job:
		}
	}
	close(in)
	wg.Wait()

	return processed.Load(), failed.Load()
}
