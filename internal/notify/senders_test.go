package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMessage() Message {
	return Message{
		LeadID:  "lead-1",
		From:    "Crewdesk <leads@crewdesk.local>",
		To:      "owner@crewdesk.local",
		ReplyTo: "pm@harbor.com",
		Subject: "New Lead: Harbor Lofts",
		HTML:    "<p>hi</p>",
	}
}

func TestResendSenderPostsEmail(t *testing.T) {
	var received resendEmail
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		authorization = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer server.Close()

	sender := NewResendSender(server.URL, "re_test")
	require.NoError(t, sender.Send(context.Background(), sampleMessage()))

	assert.Equal(t, "Bearer re_test", authorization)
	assert.Equal(t, []string{"owner@crewdesk.local"}, received.To)
	assert.Equal(t, "pm@harbor.com", received.ReplyTo)
	assert.Equal(t, "New Lead: Harbor Lofts", received.Subject)
}

func TestResendSenderSurfacesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"validation_error","message":"Invalid from address"}`))
	}))
	defer server.Close()

	err := NewResendSender(server.URL, "re_test").Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid from address")
	assert.Contains(t, err.Error(), "422")
}

func TestSMTPPayloadHeaders(t *testing.T) {
	payload := string(smtpPayload(sampleMessage()))

	assert.True(t, strings.HasPrefix(payload, "From: Crewdesk <leads@crewdesk.local>\r\n"))
	assert.Contains(t, payload, "Reply-To: pm@harbor.com\r\n")
	assert.Contains(t, payload, "Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n<p>hi</p>")
	assert.Equal(t, "leads@crewdesk.local", envelopeAddress("Crewdesk <leads@crewdesk.local>"))
	assert.Equal(t, "plain@crewdesk.local", envelopeAddress(" plain@crewdesk.local "))
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (writer *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if writer.err != nil {
		return writer.err
	}
	writer.messages = append(writer.messages, msgs...)
	return nil
}

func (writer *recordingWriter) Close() error {
	writer.closed = true
	return nil
}

func TestKafkaSenderPublishesKeyedEvent(t *testing.T) {
	writer := &recordingWriter{}
	sender := &KafkaSender{writer: writer}

	require.NoError(t, sender.Send(context.Background(), sampleMessage()))
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "lead-1", string(writer.messages[0].Key))

	var event Message
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
	assert.Equal(t, sampleMessage(), event)

	writer.err = errors.New("broker down")
	assert.ErrorContains(t, sender.Send(context.Background(), sampleMessage()), "broker down")

	require.NoError(t, sender.Close())
	assert.True(t, writer.closed)
}
