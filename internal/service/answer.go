package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell-labs/inkwell/internal/domain"
	"github.com/inkwell-labs/inkwell/internal/llm"
	"github.com/inkwell-labs/inkwell/internal/telemetry"
)

// RetrieverInterface is the retrieval surface the answer flow depends on.
type RetrieverInterface interface {
	Retrieve(ctx context.Context, input RetrieveInput) (*domain.RetrievalResult, error)
}

// GeneratorInterface is the LLM surface the answer flow depends on.
type GeneratorInterface interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error)
	ModelName() string
}

// GenerationParams carries the sampling settings for answer generation.
type GenerationParams struct {
	MaxOutputTokens int
	Temperature     float64
}

// DefaultGenerationParams provides the standard sampling settings.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{MaxOutputTokens: 8192, Temperature: 0.7}
}

// AnswerInput describes one question against a notebook. DocumentIDs, when
// set, restricts retrieval to those documents and is validated against the
// notebook before any provider call.
type AnswerInput struct {
	UserID      string
	NotebookID  string
	Question    string
	DocumentIDs []string
}

// AnswerOutput is the persisted chat turn plus the final flow state.
type AnswerOutput struct {
	Turn  *domain.ChatTurn
	State domain.QueryState
}

// AnswerService runs the full query flow: retrieve, assemble, generate,
// persist. Nothing is persisted when generation fails.
type AnswerService struct {
	notebookRepo NotebookRepositoryInterface
	documentRepo DocumentRepositoryInterface
	chatRepo     ChatRepositoryInterface
	retriever    RetrieverInterface
	assembler    *ContextAssembler
	generator    GeneratorInterface
	params       GenerationParams
	uuidGen      UUIDGenerator
}

// NewAnswerService creates a new AnswerService instance
func NewAnswerService(
	notebookRepo NotebookRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	chatRepo ChatRepositoryInterface,
	retriever RetrieverInterface,
	assembler *ContextAssembler,
	generator GeneratorInterface,
	params GenerationParams,
) *AnswerService {
	if params.MaxOutputTokens <= 0 {
		params = DefaultGenerationParams()
	}
	return &AnswerService{
		notebookRepo: notebookRepo,
		documentRepo: documentRepo,
		chatRepo:     chatRepo,
		retriever:    retriever,
		assembler:    assembler,
		generator:    generator,
		params:       params,
		uuidGen:      &DefaultUUIDGenerator{},
	}
}

// AnswerQuery answers a question grounded in the notebook's documents and
// appends the turn to chat history. An empty notebook or a query with no
// matches is answered honestly with zero retrieved chunks and no citations.
func (s *AnswerService) AnswerQuery(ctx context.Context, input AnswerInput) (*AnswerOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.AnswerQuery", telemetry.SpanAttributes{
		UserID:     input.UserID,
		NotebookID: input.NotebookID,
		Operation:  "answer",
	})
	defer span.End()

	state := domain.QuerySubmitted

	if strings.TrimSpace(input.Question) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if _, err := s.notebookRepo.GetByIDForUser(ctx, input.NotebookID, input.UserID); err != nil {
		return nil, err
	}

	docNames, err := s.documentRepo.GetNames(ctx, input.NotebookID)
	if err != nil {
		return nil, err
	}
	if err := validateScope(input.DocumentIDs, docNames); err != nil {
		return nil, err
	}

	if err := advance(&state, domain.Retrieving); err != nil {
		return nil, err
	}
	result, err := s.retriever.Retrieve(ctx, RetrieveInput{
		UserID:      input.UserID,
		NotebookID:  input.NotebookID,
		Query:       input.Question,
		DocumentIDs: input.DocumentIDs,
	})
	if err != nil {
		state = domain.RetrievalFailed
		span.SetError(err)
		return &AnswerOutput{State: state}, err
	}
	if err := advance(&state, domain.ContextAssembled); err != nil {
		return nil, err
	}

	assembled := s.assembler.Assemble(result, docNames)

	if err := advance(&state, domain.Generating); err != nil {
		return nil, err
	}
	gen, err := s.generator.Generate(ctx, llm.GenerateRequest{
		Prompt:          BuildPrompt(assembled.Text, input.Question),
		MaxOutputTokens: s.params.MaxOutputTokens,
		Temperature:     s.params.Temperature,
	})
	if err != nil {
		state = domain.GenerationFailed
		span.SetError(err)
		return &AnswerOutput{State: state}, domain.NewGenerationError(err)
	}
	if err := advance(&state, domain.ResponseReady); err != nil {
		return nil, err
	}

	referenced := make([]string, 0, len(assembled.Documents))
	for _, id := range assembled.Documents {
		if name := docNames[id]; name != "" {
			referenced = append(referenced, name)
		} else {
			referenced = append(referenced, id)
		}
	}

	turn := &domain.ChatTurn{
		ID:         s.uuidGen.NewString(),
		NotebookID: input.NotebookID,
		UserPrompt: input.Question,
		AIResponse: gen.Text,
		Metadata: domain.TurnMetadata{
			Citations:           assembled.Citations,
			RetrievedChunks:     len(result.Chunks),
			DocumentsReferenced: referenced,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := domain.ValidateChatTurn(turn); err != nil {
		return nil, err
	}
	if err := s.chatRepo.Create(ctx, turn); err != nil {
		span.SetError(err)
		return nil, err
	}

	return &AnswerOutput{Turn: turn, State: state}, nil
}

// validateScope rejects document ids that are unknown to the notebook before
// any provider call is made.
func validateScope(ids []string, owned map[string]string) error {
	if len(ids) == 0 {
		return nil
	}
	var missing []string
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domain.NewScopeError(fmt.Sprintf("documents not in notebook: %s", strings.Join(missing, ", ")))
	}
	return nil
}

func advance(state *domain.QueryState, to domain.QueryState) error {
	if !domain.CanTransition(*state, to) {
		return domain.NewDomainError(domain.ErrCodeInvalidOperation,
			fmt.Sprintf("invalid query state transition %s -> %s", *state, to))
	}
	*state = to
	return nil
}
