package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/api"
	"github.com/abhisek/jarvis/internal/jarvis"
	"github.com/abhisek/jarvis/internal/relay"
	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/session"
	"github.com/abhisek/jarvis/internal/speech"
	"github.com/abhisek/jarvis/internal/store"
)

var errQuit = errors.New("quit")

const shellHelp = `Commands:
  state                     show the lesson state
  say <text>                post a chat message
  coach                     ask Jarvis for the next coaching line
  voice <audio-file>        answer the voice task with a recording
  load <article-id> <level> load an article version
  lookup <word> [sentence]  look up a word while reading
  report                    save the lesson report and show feedback
  resync                    replay the room log from the relay
  reset-room                reset every replica in the room
  <kind> [json-args]        dispatch a raw session action, e.g.
                            stage.set {"stage":"battle"}
  quit
`

// shell drives one session replica from text commands.
type shell struct {
	sess        *session.Session
	role        role.Role
	coach       *jarvis.Coach
	client      *relay.Client
	transcriber speech.Transcriber
	reports     store.ReportRepo
	api         *api.Client
	userID      int
	out         io.Writer
	log         *zap.Logger
	now         func() time.Time

	articleID int
}

// exec runs one command line. It returns errQuit when the user asks to
// leave.
func (s *shell) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "quit", "exit":
		return errQuit
	case "state":
		s.printState()
	case "say":
		if rest == "" {
			return errors.New("usage: say <text>")
		}
		return s.sess.AddMessage(session.SpeakerFor(s.role), rest)
	case "coach":
		l, err := s.coach.Narrate(ctx, s.sess)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "jarvis: %s\n", l.Say)
	case "voice":
		return s.voice(ctx, rest)
	case "load":
		return s.load(ctx, rest)
	case "lookup":
		word, sentence, _ := strings.Cut(rest, " ")
		if word == "" {
			return errors.New("usage: lookup <word> [sentence]")
		}
		added, err := s.sess.AddLookup(word, strings.TrimSpace(sentence), s.sess.Snapshot().Article.VersionID)
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintf(s.out, "%q not added\n", word)
		}
	case "report":
		return s.report(ctx)
	case "resync":
		if s.client == nil {
			return errors.New("not connected to a relay")
		}
		return s.client.Resync()
	case "reset-room":
		if s.client == nil {
			return s.sess.Reset()
		}
		return s.client.ResetRoom()
	default:
		a, err := parseAction(line, s.role, s.now())
		if err != nil {
			return err
		}
		return s.sess.Dispatch(a)
	}
	return nil
}

// parseAction turns "<kind> [json]" into an action by actor.
func parseAction(line string, actor role.Role, at time.Time) (session.Action, error) {
	kind, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)
	if !strings.Contains(kind, ".") {
		return session.Action{}, fmt.Errorf("unknown command %q (try help)", kind)
	}
	if args == "" {
		return session.NewAction(session.Kind(kind), actor, nil, at)
	}
	if !json.Valid([]byte(args)) {
		return session.Action{}, fmt.Errorf("%s: arguments must be JSON", kind)
	}
	return session.NewAction(session.Kind(kind), actor, json.RawMessage(args), at)
}

func (s *shell) printState() {
	st := s.sess.Snapshot()
	fmt.Fprintf(s.out, "role=%s stage=%s article=%q\n", st.Role, st.Stage, st.Article.Title)
	answered := len(st.Battle.QuizAnswers)
	fmt.Fprintf(s.out, "quiz %d/%d answered, %d words looked up\n", answered, len(st.Article.Quiz), len(st.Battle.Lookups))
	if st.Stage == role.StageCoaching {
		c := st.Coaching
		fmt.Fprintf(s.out, "coaching phase=%d task=%s completed=%t\n", c.Phase, c.TaskType, c.TaskCompleted)
	}
	if n := len(st.Messages); n > 0 {
		m := st.Messages[n-1]
		fmt.Fprintf(s.out, "last message (%s): %s\n", m.Role, m.Text)
	}
}

func (s *shell) voice(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: voice <audio-file>")
	}
	if s.transcriber == nil {
		return errors.New("voice answers need GEMINI_API_KEY or OPENAI_API_KEY")
	}
	v := speech.NewVoiceAnswer(speech.NewFileRecorder(path), s.transcriber, s.sess, speech.DefaultConfig(), s.log)
	if err := v.Start(ctx); err != nil {
		return err
	}
	text, err := v.Finish(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "you said: %s\n", text)
	return nil
}

func (s *shell) load(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return errors.New("usage: load <article-id> <level>")
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid article id %q", fields[0])
	}
	if err := s.sess.LoadArticle(ctx, id, fields[1]); err != nil {
		return err
	}
	s.articleID = id
	fmt.Fprintf(s.out, "loaded %q\n", s.sess.Snapshot().Article.Title)
	return nil
}

// reportData is what a stored report keeps beyond its summary columns.
type reportData struct {
	Report   session.Report  `json:"report"`
	Feedback jarvis.Feedback `json:"feedback"`
}

func (s *shell) report(ctx context.Context) error {
	rep := s.sess.Report()
	fb, err := s.coach.Review(ctx, rep)
	if err != nil {
		return err
	}

	data, err := json.Marshal(reportData{Report: rep, Feedback: fb})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if s.reports != nil {
		err := s.reports.Save(ctx, &store.Report{
			SessionID:    rep.SessionID,
			ArticleTitle: rep.ArticleTitle,
			QuizCorrect:  rep.QuizCorrect,
			QuizTotal:    len(rep.Quiz),
			CreatedAt:    rep.GeneratedAt,
			Data:         data,
		})
		if err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}
	if s.api != nil && s.userID > 0 {
		if err := s.api.SaveSessionLog(ctx, api.SessionLogFromReport(rep, s.userID, s.articleID)); err != nil {
			s.log.Warn("upload session log", zap.Error(err))
		}
	}

	fmt.Fprintf(s.out, "%s\n", fb.Summary)
	for _, line := range fb.Strengths {
		fmt.Fprintf(s.out, "  + %s\n", line)
	}
	for _, line := range fb.NextSteps {
		fmt.Fprintf(s.out, "  > %s\n", line)
	}
	return nil
}
