package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/funters/fund-engine/internal/domain"
	fundErrors "github.com/funters/fund-engine/pkg/errors"
	"github.com/funters/fund-engine/pkg/response"
	"github.com/funters/fund-engine/tests/mocks"
)

func newLoanRouter(service *mocks.MockLoanService) *mux.Router {
	handler := NewLoanHandler(service)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/loans", handler.IssueLoan).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/loans", handler.ListLoans).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/loans/{loanId}", handler.GetLoan).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/loans/{loanId}/installments/{installmentId}/pay", handler.PayInstallment).Methods(http.MethodPost)
	return router
}

func sampleLoan() *domain.Loan {
	return &domain.Loan{
		ID:                uuid.New(),
		MemberID:          uuid.New(),
		MemberName:        "Asha",
		TotalAmount:       decimal.NewFromInt(10000),
		RecoverableAmount: decimal.NewFromInt(7000),
		WaiverAmount:      decimal.NewFromInt(3000),
		TermMonths:        10,
		Status:            domain.LoanStatusActive,
	}
}

func decodeResponse(t *testing.T, body *bytes.Buffer) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	return resp
}

func TestIssueLoanHandler(t *testing.T) {
	memberID := uuid.New().String()

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*mocks.MockLoanService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "loan issued",
			requestBody: domain.IssueLoanRequest{
				MemberID:    memberID,
				TotalAmount: decimal.NewFromInt(10000),
				TermMonths:  10,
				IssueDate:   "2024-01-15",
			},
			setupMock: func(m *mocks.MockLoanService) {
				m.On("IssueLoan", mock.Anything, mock.Anything).Return(sampleLoan(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed json",
			requestBody:    "{not json",
			setupMock:      func(m *mocks.MockLoanService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "validation failure",
			requestBody: domain.IssueLoanRequest{
				MemberID:   memberID,
				TermMonths: 10,
				IssueDate:  "2024-01-15",
			},
			setupMock:      func(m *mocks.MockLoanService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "member not approved",
			requestBody: domain.IssueLoanRequest{
				MemberID:    memberID,
				TotalAmount: decimal.NewFromInt(10000),
				TermMonths:  10,
				IssueDate:   "2024-01-15",
			},
			setupMock: func(m *mocks.MockLoanService) {
				m.On("IssueLoan", mock.Anything, mock.Anything).
					Return(nil, fundErrors.WrapMemberNotApproved(uuid.MustParse(memberID)))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   fundErrors.ErrCodeMemberNotApproved,
		},
		{
			name: "term outside range",
			requestBody: domain.IssueLoanRequest{
				MemberID:    memberID,
				TotalAmount: decimal.NewFromInt(10000),
				TermMonths:  24,
				IssueDate:   "2024-01-15",
			},
			setupMock: func(m *mocks.MockLoanService) {
				m.On("IssueLoan", mock.Anything, mock.Anything).
					Return(nil, fundErrors.WrapInvalidTerm(24))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   fundErrors.ErrCodeInvalidTerm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockLoanService{}
			tt.setupMock(mockService)
			router := newLoanRouter(mockService)

			var body bytes.Buffer
			if s, ok := tt.requestBody.(string); ok {
				body.WriteString(s)
			} else {
				require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", &body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			resp := decodeResponse(t, rec.Body)
			assert.Equal(t, tt.expectedStatus < 300, resp.Success)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, resp.Code)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestGetLoanHandler(t *testing.T) {
	loan := sampleLoan()

	mockService := &mocks.MockLoanService{}
	mockService.On("GetLoan", mock.Anything, loan.ID).Return(loan, nil)
	router := newLoanRouter(mockService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans/"+loan.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec.Body)
	assert.True(t, resp.Success)
	mockService.AssertExpectations(t)
}

func TestGetLoanHandler_NotFound(t *testing.T) {
	loanID := uuid.New()

	mockService := &mocks.MockLoanService{}
	mockService.On("GetLoan", mock.Anything, loanID).Return(nil, fundErrors.WrapLoanNotFound(loanID))
	router := newLoanRouter(mockService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans/"+loanID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec.Body)
	assert.Equal(t, fundErrors.ErrCodeLoanNotFound, resp.Code)
}

func TestGetLoanHandler_BadID(t *testing.T) {
	router := newLoanRouter(&mocks.MockLoanService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLoansHandler_MemberFilter(t *testing.T) {
	memberID := uuid.New()

	mockService := &mocks.MockLoanService{}
	mockService.On("ListLoans", mock.Anything, mock.MatchedBy(func(id *uuid.UUID) bool {
		return id != nil && *id == memberID
	})).Return([]*domain.Loan{sampleLoan()}, nil)
	router := newLoanRouter(mockService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans?memberId="+memberID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestPayInstallmentHandler(t *testing.T) {
	loan := sampleLoan()
	installmentID := uuid.New()

	tests := []struct {
		name           string
		setupMock      func(*mocks.MockLoanService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "payment recorded",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("RecordPayment", mock.Anything, loan.ID, installmentID).Return(loan, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "installment already paid",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("RecordPayment", mock.Anything, loan.ID, installmentID).
					Return(nil, fundErrors.WrapAlreadyPaid(installmentID))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   fundErrors.ErrCodeAlreadyPaid,
		},
		{
			name: "installment not found",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("RecordPayment", mock.Anything, loan.ID, installmentID).
					Return(nil, fundErrors.WrapInstallmentNotFound(installmentID))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   fundErrors.ErrCodeInstallmentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockLoanService{}
			tt.setupMock(mockService)
			router := newLoanRouter(mockService)

			url := "/api/v1/loans/" + loan.ID.String() + "/installments/" + installmentID.String() + "/pay"
			req := httptest.NewRequest(http.MethodPost, url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			resp := decodeResponse(t, rec.Body)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, resp.Code)
			}
			mockService.AssertExpectations(t)
		})
	}
}
