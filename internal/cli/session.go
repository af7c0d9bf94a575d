package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/comigor/becas-go/internal/agent"
	"github.com/comigor/becas-go/internal/document"
	"github.com/comigor/becas-go/internal/export"
	"github.com/comigor/becas-go/internal/history"
)

const banner = `Agente de Becas - Asistente Virtual
¡Hola! Soy tu asistente especializado en becas para estudiantes peruanos.
Pregúntame sobre becas nacionales, internacionales, requisitos, plazos, documentos, etc.
Escribe /ayuda para ver los comandos.`

const helpText = `Comandos:
  /adjuntar <ruta>            adjunta un documento (PDF, TXT, DOCX, PPTX)
  /quitar                     quita el documento adjunto
  /limpiar                    elimina toda la conversación
  /exportar <txt|pdf> [ruta]  guarda la conversación
  /historial                  muestra la conversación
  /ayuda                      muestra esta ayuda
  /salir                      termina la sesión
Cualquier otro texto se envía como pregunta.`

// Session is the interactive shell around an Agent: it reads one line at a
// time, runs it as a command or a question, and prints the result.
type Session struct {
	agent    *agent.Agent
	exporter *export.Exporter
	in       io.Reader
	out      io.Writer
	now      func() time.Time
	readFile func(string) ([]byte, error)
	dir      string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDir resolves relative /adjuntar and /exportar paths against dir
// instead of the working directory.
func WithDir(dir string) SessionOption {
	return func(s *Session) { s.dir = dir }
}

// WithSessionClock sets the clock used for default export file names.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession wires a Session to in and out.
func NewSession(a *agent.Agent, e *export.Exporter, in io.Reader, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		agent:    a,
		exporter: e,
		in:       in,
		out:      out,
		now:      time.Now,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run prints the banner and conversation, then loops until /salir, EOF or
// a store failure.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, banner)
	fmt.Fprintln(s.out)
	if err := s.printHistory(ctx); err != nil {
		return err
	}

	sc := bufio.NewScanner(s.in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		quit, err := s.Handle(ctx, sc.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Handle runs a single input line. It returns quit=true for /salir.
func (s *Session) Handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return false, s.ask(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/salir":
		fmt.Fprintln(s.out, "¡Hasta pronto y mucho éxito con tu postulación!")
		return true, nil
	case "/ayuda":
		fmt.Fprintln(s.out, helpText)
	case "/adjuntar":
		s.attach(ctx, arg)
	case "/quitar":
		s.agent.Detach()
		fmt.Fprintln(s.out, "Documento quitado.")
	case "/limpiar":
		if err := s.agent.Clear(ctx); err != nil {
			return false, err
		}
		return false, s.printHistory(ctx)
	case "/historial":
		return false, s.printHistory(ctx)
	case "/exportar":
		return false, s.export(ctx, arg)
	default:
		fmt.Fprintf(s.out, "Comando desconocido: %s. Escribe /ayuda.\n", cmd)
	}
	return false, nil
}

func (s *Session) ask(ctx context.Context, question string) error {
	if info, ok := s.agent.Attachment(); ok && info.Err == nil {
		fmt.Fprintf(s.out, "📎 %s\n", info.Name)
	}
	fmt.Fprintln(s.out, "⏳ Analizando tu consulta...")
	if _, err := s.agent.Process(ctx, question); err != nil {
		return err
	}
	msgs, err := s.agent.Messages(ctx)
	if err != nil {
		return err
	}
	s.printMessage(msgs[len(msgs)-1])
	return nil
}

func (s *Session) attach(ctx context.Context, path string) {
	if path == "" {
		fmt.Fprintln(s.out, "Uso: /adjuntar <ruta>")
		return
	}
	data, err := s.readFile(s.resolve(path))
	if err != nil {
		fmt.Fprintf(s.out, "❌ No se pudo leer %s: %v\n", path, err)
		return
	}
	name := filepath.Base(path)
	fmt.Fprintf(s.out, "📊 Procesando %s...\n", name)
	info, err := s.agent.Attach(ctx, document.Upload{Name: name, Data: data})
	if err != nil {
		fmt.Fprintln(s.out, agent.DescribeExtractionError(err))
		return
	}
	fmt.Fprintf(s.out, "✅ %s cargado\nTamaño: %s caracteres\n", info.Name, humanize.Comma(int64(info.Chars)))
	if info.Truncated {
		fmt.Fprintln(s.out, "Solo se analizarán los primeros 8,000 caracteres.")
	}
}

func (s *Session) export(ctx context.Context, arg string) error {
	formatArg, path, _ := strings.Cut(arg, " ")
	f, err := export.ParseFormat(formatArg)
	if err != nil || !s.exporter.Enabled(f) {
		fmt.Fprintf(s.out, "Formatos disponibles: %s\n", joinFormats(s.exporter.Formats()))
		return nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = export.FileName(f, s.now())
	}

	msgs, err := s.agent.Messages(ctx)
	if err != nil {
		return err
	}
	file, err := os.Create(s.resolve(path))
	if err != nil {
		fmt.Fprintf(s.out, "❌ No se pudo crear %s: %v\n", path, err)
		return nil
	}
	werr := s.exporter.Write(file, f, msgs)
	if cerr := file.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		fmt.Fprintf(s.out, "❌ No se pudo exportar: %v\n", werr)
		return nil
	}
	fmt.Fprintf(s.out, "💾 Conversación guardada en %s\n", path)
	return nil
}

func (s *Session) printHistory(ctx context.Context) error {
	msgs, err := s.agent.Messages(ctx)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		s.printMessage(m)
	}
	return nil
}

func (s *Session) printMessage(m history.Message) {
	icon := "🎓"
	if m.Role == history.RoleUser {
		icon = "👤"
	}
	fmt.Fprintf(s.out, "%s %s [%s]\n%s\n\n", icon, export.RoleLabel(m.Role), m.CreatedAt.Format("15:04"), m.Content)
}

func (s *Session) resolve(path string) string {
	if s.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}

func joinFormats(fs []export.Format) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
