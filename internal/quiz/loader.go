package quiz

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
)

// Problem records a question-bank row that could not be parsed. Bad rows are
// reported, not fatal; the rest of the bank still loads.
type Problem struct {
	RowNum int    `json:"row_num"` // spreadsheet line number (header is line 1)
	Err    string `json:"error"`
}

// Invisible and non-breaking space variants that sneak in from word
// processors; all flattened to a plain space.
var invisibles = strings.NewReplacer(
	" ", " ", // NBSP
	" ", " ", // narrow NBSP
	" ", " ", // thin space
	" ", " ", // figure space
	" ", " ", // hair space
	"​", " ", // zero-width space
	"‌", " ", // ZWNJ
	"‍", " ", // ZWJ
	"⁠", " ", // word joiner
	"\uFEFF", " ", // BOM / ZWNBSP
)

func normalizeText(s string) string {
	return invisibles.Replace(norm.NFKC.String(s))
}

var digitsRe = regexp.MustCompile(`(\d+)`)

// parseCorrectIndex accepts either a bare integer or a "Correct Option: 4"
// style field, both 1-based, and returns the zero-based choice index.
func parseCorrectIndex(answer string) (int, error) {
	s := strings.TrimSpace(normalizeText(answer))
	if s == "" {
		return 0, fmt.Errorf("empty answer field")
	}
	m := digitsRe.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("cannot parse correct option from %q", s)
	}
	idx, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("cannot parse correct option from %q", s)
	}
	if idx <= 0 {
		return 0, fmt.Errorf("correct option must be >= 1, got %d", idx)
	}
	return idx - 1, nil
}

// parseChoices splits the pipe-separated choices column. Inner spacing is
// kept; only leading space and Excel's text-marker apostrophe are stripped.
func parseChoices(raw string) []string {
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, c := range parts {
		c = normalizeText(c)
		c = strings.TrimPrefix(c, "'")
		c = strings.TrimLeft(c, " \t")
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

func parseCalcFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "t":
		return true
	}
	return false
}

func rowToQuestion(row map[string]string) (models.Question, error) {
	prompt := normalizeText(row["question"])

	choices := parseChoices(row["choices"])
	if len(choices) == 0 {
		return models.Question{}, fmt.Errorf("no choices parsed")
	}

	correct, err := parseCorrectIndex(row["answer"])
	if err != nil {
		return models.Question{}, err
	}
	if correct >= len(choices) {
		return models.Question{}, fmt.Errorf("correct_index %d out of range for %d choices", correct, len(choices))
	}

	rawID := row["Question_int"]
	if rawID == "" {
		rawID = row["id"]
	}
	if rawID == "" {
		rawID = row["qid"]
	}
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return models.Question{}, fmt.Errorf("missing Question_int")
	}
	qid, err := strconv.Atoi(rawID)
	if err != nil {
		return models.Question{}, fmt.Errorf("invalid Question_int: %q", rawID)
	}

	return models.Question{
		ID:           strconv.Itoa(qid),
		Prompt:       prompt,
		Choices:      choices,
		CorrectIndex: correct,
		Explanation:  normalizeText(row["back"]),
		IsCalc:       parseCalcFlag(row["calc"]),
	}, nil
}

// readBankText reads the CSV bytes, preferring UTF-8 (with or without BOM)
// and falling back to latin1, which decodes any byte sequence.
func readBankText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	raw = []byte(strings.TrimPrefix(string(raw), "\uFEFF"))
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	logger.Default().WithPrefix("quiz").Warn("question bank %s is not UTF-8, decoding as latin1", path)
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// LoadQuestions reads the question bank CSV at path. It returns the parsed
// questions plus one Problem per unparseable row. The only hard error is an
// unreadable file.
func LoadQuestions(path string) ([]models.Question, []Problem, error) {
	log := logger.Default().WithPrefix("quiz")

	text, err := readBankText(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read question bank: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1 // ragged rows become per-row problems, not a failed load

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read question bank header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	missing := missingColumns(header)
	if len(missing) > 0 {
		log.Warn("question bank missing expected columns: %v", missing)
	}

	var (
		questions []models.Question
		problems  []Problem
	)
	// Row numbers start at 2 so they match spreadsheet line numbers.
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			problems = append(problems, Problem{RowNum: rowNum, Err: err.Error()})
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}

		q, err := rowToQuestion(row)
		if err != nil {
			problems = append(problems, Problem{RowNum: rowNum, Err: err.Error()})
			continue
		}
		questions = append(questions, q)
	}

	log.Info("loaded %d questions from %s (%d bad rows)", len(questions), path, len(problems))
	return questions, problems, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, want := range []string{"question", "choices", "answer", "Question_int"} {
		if !present[want] {
			missing = append(missing, want)
		}
	}
	return missing
}

var (
	digitLetterRe = regexp.MustCompile(`(\d)([A-Za-z])`)
	letterDigitRe = regexp.MustCompile(`([A-Za-z])(\d)`)
	stuckMinusRe  = regexp.MustCompile(`(\S)([-–—])(\$?\d)`)
	multiSpaceRe  = regexp.MustCompile(`[ \t]+`)
)

// CleanLabel repairs choice text mangled by spreadsheet round-trips:
// invisible spaces, digit/letter run-ons like "200and", and minus signs
// glued to the previous token.
func CleanLabel(s string) string {
	if s == "" {
		return s
	}
	s = normalizeText(s)
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = digitLetterRe.ReplaceAllString(s, "$1 $2")
	s = letterDigitRe.ReplaceAllString(s, "$1 $2")
	s = stuckMinusRe.ReplaceAllString(s, "$1 $2$3")
	return strings.TrimSpace(s)
}
