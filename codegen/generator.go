package codegen

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/teranos/mmgen/logger"
	"github.com/teranos/mmgen/modeling"
)

// Generator writes Python class definitions for a model.
type Generator struct {
	Catalog modeling.Catalog
	Options Options
	Logger  *zap.SugaredLogger
}

// Result summarizes a generation.
type Result struct {
	RunID string
	// Known lists imported classes in import order.
	Known []string
	// Generated lists generated classes in emission order.
	Generated []string
}

// NewGenerator returns a generator using the UML catalog and default options.
func NewGenerator() *Generator {
	return &Generator{
		Catalog: modeling.UML(),
		Options: DefaultOptions(),
		Logger:  logger.ComponentLogger("codegen"),
	}
}

func (g *Generator) log(ctx context.Context) *zap.SugaredLogger {
	l := g.Logger
	if l == nil {
		l = logger.Logger
	}
	if fields := logger.FieldsFromContext(ctx); len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}

// Graph classifies store and rejects generalization cycles.
func (g *Generator) Graph(ctx context.Context, store Store) (*ClassGraph, error) {
	if err := g.Options.Validate(); err != nil {
		return nil, err
	}
	graph, err := BuildGraph(store, g.Catalog, g.Options, g.log(ctx))
	if err != nil {
		return nil, err
	}
	if err := checkAcyclic(graph); err != nil {
		return nil, err
	}
	return graph, nil
}

// Generate writes the module for store to w. Nothing is written when the
// model cannot be classified or contains a generalization cycle.
func (g *Generator) Generate(ctx context.Context, store Store, w io.Writer) (*Result, error) {
	log := g.log(ctx)

	graph, err := g.Graph(ctx, store)
	if err != nil {
		return nil, err
	}

	rc := newRunContext(graph, store, g.Options, w)
	if err := rc.emitAll(); err != nil {
		return nil, err
	}

	res := &Result{
		Known:     classNames(graph.Known),
		Generated: classNames(rc.order),
	}
	log.Debugw("Emitted classes",
		logger.FieldKnown, len(res.Known),
		logger.FieldGenerated, len(res.Generated))
	return res, nil
}
