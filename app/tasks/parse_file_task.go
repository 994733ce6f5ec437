package tasks

import (
	"context"
	"io"

	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/parser"
)

// ParseFileTask parses one feed document. Path "-" reads Stdin instead of
// a file.
type ParseFileTask struct {
	Task
	Path   string
	Stdin  io.Reader
	Result *model.Feed

	parser *parser.Parser
}

func NewParseFileTask(p *parser.Parser, path string, stdin io.Reader) *ParseFileTask {
	return &ParseFileTask{
		Task:   NewTask(TaskTypeParseFile),
		Path:   path,
		Stdin:  stdin,
		parser: p,
	}
}

func (t *ParseFileTask) Execute(ctx context.Context) error {
	var (
		feed *model.Feed
		err  error
	)
	if t.Path == "-" {
		feed, err = t.parser.Parse(t.Stdin)
	} else {
		feed, err = t.parser.ParseFile(t.Path)
	}
	if err != nil {
		return err
	}

	t.Result = feed
	return nil
}
