package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/jarvis/internal/api"
	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/jarvis"
	"github.com/abhisek/jarvis/internal/llm"
	"github.com/abhisek/jarvis/internal/relay"
	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/session"
	"github.com/abhisek/jarvis/internal/speech"
)

var joinCmd = &cobra.Command{
	Use:   "join <student|coach>",
	Short: "Join a lesson room and drive it from stdin",
	Args:  cobra.ExactArgs(1),
	RunE:  runJoin,
}

func init() {
	joinCmd.Flags().String("room", "", "Room to join (overrides JARVIS_ROOM)")
	joinCmd.Flags().String("url", "", "Relay WebSocket URL (overrides JARVIS_SYNC_URL)")
	joinCmd.Flags().String("lesson", "", "YAML lesson file (overrides JARVIS_LESSON_FILE)")
	joinCmd.Flags().Int("user", 0, "Backend user id; session logs are uploaded when set")
	joinCmd.Flags().Bool("offline", false, "Run without a relay")
	joinCmd.Flags().Bool("resume", false, "Restore the latest snapshot of this room and role (needs --offline)")
}

// errResumeOnline rejects --resume in a relay room, where the room log
// replaces local state on join.
var errResumeOnline = errors.New("--resume needs --offline: joining a room replays its log over local state")

func checkJoinFlags(offline, resume bool) error {
	if resume && !offline {
		return errResumeOnline
	}
	return nil
}

func runJoin(cmd *cobra.Command, args []string) error {
	r, err := role.Parse(args[0])
	if err != nil {
		return err
	}
	room := flagOr(cmd, "room", cfg.Room)
	syncURL := flagOr(cmd, "url", cfg.SyncURL)
	lessonPath := flagOr(cmd, "lesson", cfg.LessonFile)
	offline, _ := cmd.Flags().GetBool("offline")
	resume, _ := cmd.Flags().GetBool("resume")
	userID, _ := cmd.Flags().GetInt("user")
	if err := checkJoinFlags(offline, resume); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var provider llm.Provider
	if cfg.CoachAI {
		p, err := llm.NewProviderFromEnv(ctx, st.LLMEventRepo(), logger)
		if err != nil {
			logger.Warn("LLM provider not configured, Jarvis will use scripted lines", zap.Error(err))
		} else {
			provider = p
		}
	}

	backend := api.New(cfg.APIBaseURL, cfg.APITimeout, api.WithLogger(logger))
	var (
		source session.ContentSource = backend
		lookup session.VocabLookup   = backend
	)
	if lessonPath != "" {
		l, err := content.LoadFile(lessonPath)
		if err != nil {
			return fmt.Errorf("load lesson %s: %w", lessonPath, err)
		}
		src := lessonSource{lesson: l, next: backend}
		source, lookup = src, src
	}

	coachCfg := jarvis.DefaultConfig()
	sess := session.New(session.DefaultConfig(),
		session.WithID(room+"-"+r.String()),
		session.WithLogger(logger),
		session.WithContentSource(source),
		session.WithVocabLookup(jarvis.NewEnricher(lookup, provider, coachCfg, logger)),
	)
	defer sess.Close()
	if err := sess.SetRole(r); err != nil {
		return err
	}

	j := newJournal(sess.ID(), st, cfg.SnapshotEvery, cfg.SnapshotKeep, logger)
	go j.run(ctx)
	unwatch := sess.Watch(j.observe)
	defer j.close()
	defer unwatch()

	if resume {
		ok, err := restoreLatest(ctx, sess, st.SnapshotRepo())
		if err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		if ok {
			logger.Info("restored latest snapshot", zap.String("session", sess.ID()))
		}
	}

	sh := &shell{
		sess:    sess,
		role:    r,
		coach:   jarvis.New(provider, coachCfg, logger),
		reports: st.ReportRepo(),
		api:     backend,
		userID:  userID,
		out:     cmd.OutOrStdout(),
		log:     logger,
		now:     time.Now,
	}
	if tr, err := speech.NewTranscriberFromEnv(ctx, speech.DefaultConfig()); err == nil {
		sh.transcriber = tr
	} else {
		logger.Debug("voice answers disabled", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	if !offline {
		ccfg := relay.DefaultClientConfig(syncURL)
		ccfg.Room = room
		ccfg.Role = r
		sh.client = relay.NewClient(ccfg, sess, logger)
		g.Go(func() error { return sh.client.Run(gctx) })
	}

	shellCtx, endShell := context.WithCancel(gctx)
	g.Go(func() error {
		defer endShell()
		return runShell(shellCtx, sh, cmd.InOrStdin())
	})
	// The relay client runs until the shell ends.
	g.Go(func() error {
		<-shellCtx.Done()
		stop()
		return nil
	})

	fmt.Fprintf(sh.out, "joined %s as %s (type help)\n", room, r)
	err = g.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runShell feeds stdin lines to sh until EOF, quit or ctx ends.
func runShell(ctx context.Context, sh *shell, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := sh.exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(sh.out, "error: %v\n", err)
			}
		}
	}
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}
