// Package cli is an interactive search prompt for debugging the engine.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/direitospcd/pcdserve/internal/logger"
	"github.com/direitospcd/pcdserve/internal/utils"
	"github.com/direitospcd/pcdserve/pkg/analyze"
	"github.com/direitospcd/pcdserve/pkg/rank"
)

// InputHandler reads queries line by line and prints ranked categories.
//
// Besides plain queries it understands:
//
//	:s <prefix>   complete a keyword
//	:a <path>     analyze a document
//	:stats        index sizes
type InputHandler struct {
	engine   *rank.Engine
	analyzer *analyze.Analyzer
	limit    int
	out      *log.Logger
	styles   styles
}

// NewInputHandler prints to stdout.
func NewInputHandler(engine *rank.Engine, analyzer *analyze.Analyzer, limit int, noColor bool) *InputHandler {
	return NewInputHandlerWithWriter(engine, analyzer, limit, noColor, os.Stdout)
}

// NewInputHandlerWithWriter prints to w.
func NewInputHandlerWithWriter(engine *rank.Engine, analyzer *analyze.Analyzer, limit int, noColor bool, w io.Writer) *InputHandler {
	return &InputHandler{
		engine:   engine,
		analyzer: analyzer,
		limit:    limit,
		out:      logger.NewWithWriter(w, ""),
		styles:   newStyles(noColor),
	}
}

// Start runs the prompt on stdin until EOF.
func (h *InputHandler) Start() error {
	h.out.Print("pcdserve CLI")
	h.out.Print("digite uma busca e pressione Enter (:s prefixo, :a arquivo, :stats; Ctrl+C para sair)")
	return h.Run(os.Stdin)
}

// Run handles every line of r. EOF ends the loop without error.
func (h *InputHandler) Run(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	switch {
	case line == ":stats":
		h.printStats()
	case strings.HasPrefix(line, ":s "):
		h.suggest(strings.TrimSpace(line[3:]))
	case strings.HasPrefix(line, ":a "):
		if err := h.AnalyzeFile(strings.TrimSpace(line[3:])); err != nil {
			log.Errorf("%v", err)
		}
	case strings.HasPrefix(line, ":"):
		log.Warnf("Unknown command: %s", line)
	default:
		h.search(line)
	}
}

func (h *InputHandler) search(query string) {
	query = utils.ClampQuery(query, h.engine.Options().MaxQueryLength)

	start := time.Now()
	resp := h.engine.Search(query)
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), query)

	if line := h.styles.locationLine(resp); line != "" {
		h.out.Print(line)
	}
	for _, c := range resp.Corrections {
		h.out.Printf("Você quis dizer %q? (%s)", c.Word, c.Term)
	}
	if len(resp.Results) == 0 {
		h.out.Printf("Nenhum resultado para '%s'", query)
		return
	}

	results := resp.Results
	if h.limit > 0 && len(results) > h.limit {
		results = results[:h.limit]
	}
	h.out.Printf("%d resultados para '%s':", len(results), query)
	for i, r := range results {
		h.out.Print(h.styles.resultRow(i, r, h.engine.Catalog()))
	}
}

func (h *InputHandler) suggest(prefix string) {
	if !utils.IsValidInput(prefix) {
		h.out.Printf("Nenhuma sugestão para '%s'", prefix)
		return
	}
	found := h.engine.Suggest(prefix, h.limit)
	if len(found) == 0 {
		h.out.Printf("Nenhuma sugestão para '%s'", prefix)
		return
	}
	for i, sg := range found {
		h.out.Print(h.styles.suggestionRow(i, sg))
	}
}

// AnalyzeFile scores the document at path and prints the categories.
func (h *InputHandler) AnalyzeFile(path string) error {
	if h.analyzer == nil {
		return fmt.Errorf("document analysis unavailable")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	results := h.analyzer.Analyze(string(data), filepath.Base(path))
	if len(results) == 0 {
		h.out.Printf("Nenhuma categoria identificada em %s", filepath.Base(path))
		return nil
	}
	h.out.Printf("%d categorias em %s:", len(results), filepath.Base(path))
	for i, r := range results {
		h.out.Print(h.styles.analysisRow(i, r))
	}
	return nil
}

func (h *InputHandler) printStats() {
	st := h.engine.Stats()
	h.out.Print("Catálogo",
		"versao", st.Version,
		"categorias", st.Categories,
		"keywords", st.Keywords,
		"vocabulario", st.Vocabulary,
		"cid", st.CidRanges,
		"estados", st.States,
		"cidades", st.Cities)
}
