package mock

import "github.com/fwojciec/serpwatch"

var _ serpwatch.Parser = (*Parser)(nil)

// Parser is a mock implementation of serpwatch.Parser.
type Parser struct {
	ParseFn func(html string, engine *serpwatch.EngineConfig, keyword string, page int) (*serpwatch.ParseResult, error)
}

func (p *Parser) Parse(html string, engine *serpwatch.EngineConfig, keyword string, page int) (*serpwatch.ParseResult, error) {
	return p.ParseFn(html, engine, keyword, page)
}

var _ serpwatch.EngineRegistry = (*EngineRegistry)(nil)

// EngineRegistry is a mock implementation of serpwatch.EngineRegistry.
type EngineRegistry struct {
	EngineFn func(name string) (*serpwatch.EngineConfig, error)
	NamesFn  func() []string
}

func (r *EngineRegistry) Engine(name string) (*serpwatch.EngineConfig, error) {
	return r.EngineFn(name)
}

func (r *EngineRegistry) Names() []string {
	return r.NamesFn()
}
