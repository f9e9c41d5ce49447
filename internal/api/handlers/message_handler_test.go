package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	apperrors "github.com/adveron/messaging-backend/internal/errors"
	"github.com/adveron/messaging-backend/internal/services"
	"github.com/adveron/messaging-backend/tests/fixtures"
	"github.com/adveron/messaging-backend/tests/mocks"
)

// MessageHandlerTestSuite is the test suite for MessageHandler
type MessageHandlerTestSuite struct {
	suite.Suite
	echo          *echo.Echo
	handler       *MessageHandler
	mockMessaging *mocks.MockMessagingService
}

// SetupTest runs before each test
func (s *MessageHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockMessaging = new(mocks.MockMessagingService)
	s.handler = NewMessageHandler(s.mockMessaging)
}

// TearDownTest runs after each test
func (s *MessageHandlerTestSuite) TearDownTest() {
	s.mockMessaging.AssertExpectations(s.T())
}

// TestMessageHandlerTestSuite runs the test suite
func TestMessageHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(MessageHandlerTestSuite))
}

// Helper function to create a test context with a JSON body
func (s *MessageHandlerTestSuite) createContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	return c, rec
}

// ==================== Send Tests ====================

func (s *MessageHandlerTestSuite) TestSend_Success() {
	message := fixtures.NewMessageBuilder().WithID(5).WithConversationID(3).Build()
	conversation := fixtures.NewConversationBuilder().WithID(3).WithUnreadCount(1).Build()

	s.mockMessaging.On("Send", mock.Anything, mock.MatchedBy(func(input services.SendInput) bool {
		return input.SenderID == 1 && input.RecipientID == 2 && input.Content == "hello"
	})).Return(message, conversation, nil)

	body := `{"sender_id": 1, "recipient_id": 2, "content": "hello"}`
	c, rec := s.createContext(http.MethodPost, "/api/messages", body)

	err := s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(s.T(), err)
	assert.True(s.T(), resp["success"].(bool))

	data := resp["data"].(map[string]interface{})
	assert.NotNil(s.T(), data["message"])
	assert.NotNil(s.T(), data["conversation"])
}

func (s *MessageHandlerTestSuite) TestSend_WithConversationIDOnly() {
	message := fixtures.NewMessageBuilder().WithID(5).WithConversationID(3).Build()
	conversation := fixtures.NewConversationBuilder().WithID(3).Build()

	s.mockMessaging.On("Send", mock.Anything, mock.MatchedBy(func(input services.SendInput) bool {
		return input.ConversationID != nil && *input.ConversationID == 3 && input.RecipientID == 0
	})).Return(message, conversation, nil)

	body := `{"sender_id": 1, "conversation_id": 3, "content": "continuing"}`
	c, rec := s.createContext(http.MethodPost, "/api/messages", body)

	err := s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusCreated, rec.Code)
}

func (s *MessageHandlerTestSuite) TestSend_MissingSender() {
	body := `{"recipient_id": 2, "content": "hello"}`
	c, rec := s.createContext(http.MethodPost, "/api/messages", body)

	err := s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *MessageHandlerTestSuite) TestSend_MissingDestination() {
	body := `{"sender_id": 1, "content": "hello"}`
	c, rec := s.createContext(http.MethodPost, "/api/messages", body)

	err := s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *MessageHandlerTestSuite) TestSend_EmptyMessage() {
	s.mockMessaging.On("Send", mock.Anything, mock.Anything).
		Return(nil, nil, apperrors.ErrEmptyMessage)

	body := `{"sender_id": 1, "recipient_id": 2, "content": ""}`
	c, rec := s.createContext(http.MethodPost, "/api/messages", body)

	err := s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *MessageHandlerTestSuite) TestSend_SelfAddressed() {
	s.mockMessaging.On("Send", mock.Anything, mock.Anything).
		Return(nil, nil, apperrors.ErrSelfAddressed)

	body := `{"sender_id": 1, "recipient_id": 1, "content": "me"}`
	c, rec := s.createContext(http.MethodPost, "/api/messages", body)

	err := s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *MessageHandlerTestSuite) TestSend_UnknownRecipient() {
	s.mockMessaging.On("Send", mock.Anything, mock.Anything).
		Return(nil, nil, apperrors.ErrParticipantNotFound)

	body := `{"sender_id": 1, "recipient_id": 999, "content": "hello"}`
	c, rec := s.createContext(http.MethodPost, "/api/messages", body)

	err := s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *MessageHandlerTestSuite) TestSend_UploadFailure() {
	s.mockMessaging.On("Send", mock.Anything, mock.Anything).
		Return(nil, nil, apperrors.ErrUploadFailed)

	body := `{"sender_id": 1, "recipient_id": 2, "content": "hello"}`
	c, rec := s.createContext(http.MethodPost, "/api/messages", body)

	err := s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadGateway, rec.Code)
}

func (s *MessageHandlerTestSuite) TestSend_MultipartWithAttachment() {
	message := fixtures.NewMessageBuilder().WithID(5).Build()
	conversation := fixtures.NewConversationBuilder().WithID(3).Build()

	s.mockMessaging.On("Send", mock.Anything, mock.MatchedBy(func(input services.SendInput) bool {
		return len(input.Attachments) == 1 && input.Attachments[0].Filename == "report.pdf"
	})).Return(message, conversation, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(s.T(), writer.WriteField("sender_id", "1"))
	require.NoError(s.T(), writer.WriteField("recipient_id", "2"))
	require.NoError(s.T(), writer.WriteField("content", "see attached"))
	part, err := writer.CreateFormFile("files", "report.pdf")
	require.NoError(s.T(), err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(s.T(), err)
	require.NoError(s.T(), writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/messages", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	err = s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusCreated, rec.Code)
}

func (s *MessageHandlerTestSuite) TestSend_MultipartBlockedExtension() {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(s.T(), writer.WriteField("sender_id", "1"))
	require.NoError(s.T(), writer.WriteField("recipient_id", "2"))
	part, err := writer.CreateFormFile("files", "malware.exe")
	require.NoError(s.T(), err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(s.T(), err)
	require.NoError(s.T(), writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/messages", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	err = s.handler.Send(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

// ==================== ToggleStar Tests ====================

func (s *MessageHandlerTestSuite) TestToggleStar_Success() {
	message := fixtures.NewMessageBuilder().WithID(5).WithStarred(true).Build()
	s.mockMessaging.On("ToggleStar", mock.Anything, uint(5)).
		Return(message, nil)

	c, rec := s.createContext(http.MethodPatch, "/api/messages/5/star", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	err := s.handler.ToggleStar(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var resp map[string]interface{}
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(s.T(), err)
	data := resp["data"].(map[string]interface{})
	assert.True(s.T(), data["is_starred"].(bool))
}

func (s *MessageHandlerTestSuite) TestToggleStar_NotFound() {
	s.mockMessaging.On("ToggleStar", mock.Anything, uint(99)).
		Return(nil, apperrors.ErrMessageNotFound)

	c, rec := s.createContext(http.MethodPatch, "/api/messages/99/star", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := s.handler.ToggleStar(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *MessageHandlerTestSuite) TestToggleStar_InvalidID() {
	c, rec := s.createContext(http.MethodPatch, "/api/messages/abc/star", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := s.handler.ToggleStar(c)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}
