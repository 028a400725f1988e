// internal/services/ai_service.go
package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/config"
	"github.com/compranet/compras-backend/internal/models"
)

// AIService calls an OpenAI-compatible chat-completions endpoint and
// caches the result per entity. All generation is best-effort: when the
// endpoint is unconfigured or fails, a deterministic fallback text is
// cached instead, and the caller's primary operation is never affected.
type AIService struct {
	db     *gorm.DB
	config *config.Config
	client *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewAIService(db *gorm.DB, config *config.Config) *AIService {
	return &AIService{
		db:     db,
		config: config,
		client: &http.Client{Timeout: time.Duration(config.AI.Timeout) * time.Second},
	}
}

// AnalyzeRequest generates and caches an analysis for a quotation request.
func (s *AIService) AnalyzeRequest(request *models.QuotationRequest) (*models.AiAnalysis, error) {
	prompt := fmt.Sprintf(
		"Analise a requisição de compra %q (%s, urgência %s, departamento %s) e aponte riscos e recomendações de negociação em até 3 frases.",
		request.Title, request.RequestNumber, request.Urgency, request.Department)

	content, err := s.complete(prompt)
	if err != nil {
		content = fmt.Sprintf(
			"Requisição %s (%s): análise automática indisponível. Recomenda-se coletar ao menos 3 cotações e validar o orçamento com o departamento %s.",
			request.RequestNumber, request.Title, request.Department)
	}

	return s.cache("quotation_request", &request.ID, content)
}

// MonthlyInsights returns the cached dashboard insight, regenerating it
// when older than 24h.
func (s *AIService) MonthlyInsights(stats map[string]interface{}) (*models.AiAnalysis, error) {
	var cached models.AiAnalysis
	err := s.db.Where("entity_type = ? AND entity_id IS NULL", "dashboard").First(&cached).Error
	if err == nil && time.Since(cached.UpdatedAt) < 24*time.Hour {
		return &cached, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to read cached analysis: %w", err)
	}

	payload, _ := json.Marshal(stats)
	prompt := fmt.Sprintf(
		"Com base nestes indicadores de compras (%s), escreva um resumo executivo de até 4 frases com tendências e pontos de atenção.",
		string(payload))

	content, cErr := s.complete(prompt)
	if cErr != nil {
		content = "Resumo automático indisponível no momento. Acompanhe as requisições em andamento e as aprovações pendentes no painel."
	}

	return s.cache("dashboard", nil, content)
}

func (s *AIService) complete(prompt string) (string, error) {
	if s.config.AI.Endpoint == "" {
		return "", errors.New("AI endpoint not configured")
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: s.config.AI.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "Você é um analista de compras corporativas. Responda em português, de forma objetiva."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, s.config.AI.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.AI.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.AI.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("AI endpoint returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// cache upserts the analysis row keyed by entity type/id.
func (s *AIService) cache(entityType string, entityID *uuid.UUID, content string) (*models.AiAnalysis, error) {
	var analysis models.AiAnalysis
	query := s.db.Where("entity_type = ?", entityType)
	if entityID != nil {
		query = query.Where("entity_id = ?", *entityID)
	} else {
		query = query.Where("entity_id IS NULL")
	}

	err := query.First(&analysis).Error
	switch {
	case err == nil:
		analysis.Content = content
		analysis.Model = s.config.AI.Model
		if err := s.db.Save(&analysis).Error; err != nil {
			return nil, fmt.Errorf("failed to update cached analysis: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		analysis = models.AiAnalysis{
			EntityType: entityType,
			EntityID:   entityID,
			Content:    content,
			Model:      s.config.AI.Model,
		}
		if err := s.db.Create(&analysis).Error; err != nil {
			return nil, fmt.Errorf("failed to cache analysis: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read cached analysis: %w", err)
	}

	return &analysis, nil
}
