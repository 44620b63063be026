package converter

import (
	"gov-token-booking/internal/delivery/dto"
	"gov-token-booking/internal/domain/entity"
)

// TokenToResponse converts a Token entity to TokenResponse DTO
func TokenToResponse(token *entity.Token) *dto.TokenResponse {
	if token == nil {
		return nil
	}

	return &dto.TokenResponse{
		ID:             token.ID,
		UserID:         token.UserID,
		UserName:       token.UserName,
		DepartmentID:   token.DepartmentID,
		DepartmentName: token.DepartmentName,
		SlotID:         token.SlotID,
		SlotTime:       token.SlotTime,
		TokenNumber:    token.TokenNumber,
		BookingDate:    token.BookingDate.Format("2006-01-02"),
		Status:         string(token.Status),
		QRData:         token.QRData,
		CreatedAt:      token.CreatedAt,
		UpdatedAt:      token.UpdatedAt,
	}
}

// TokensToResponses converts a slice of Token entities to TokenResponse DTOs
func TokensToResponses(tokens []entity.Token) []dto.TokenResponse {
	responses := make([]dto.TokenResponse, len(tokens))
	for i, token := range tokens {
		resp := TokenToResponse(&token)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
