package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
)

func newTestClient(t *testing.T) *WebSocketClient {
	t.Helper()
	server := NewWebSocketServer(":0", logging.NewNoopLogger())
	client := &WebSocketClient{
		send:       make(chan []byte, 4),
		server:     server,
		subscribed: true,
	}
	server.registerClient(client)
	return client
}

func receiveType(t *testing.T, client *WebSocketClient) string {
	t.Helper()
	var msg WebSocketMessage
	select {
	case data := <-client.send:
		require.NoError(t, json.Unmarshal(data, &msg))
	default:
		t.Fatal("expected a queued response")
	}
	return msg.Type
}

func TestWebSocketClient_Ping(t *testing.T) {
	client := newTestClient(t)

	client.handleMessage([]byte(`{"type":"ping"}`))

	assert.Equal(t, "pong", receiveType(t, client))
}

func TestWebSocketClient_SubscribeUnsubscribe(t *testing.T) {
	client := newTestClient(t)
	require.True(t, client.isSubscribed(), "clients start subscribed")

	client.handleMessage([]byte(`{"type":"unsubscribe"}`))
	assert.Equal(t, "unsubscribed", receiveType(t, client))
	assert.False(t, client.isSubscribed())

	client.handleMessage([]byte(`{"type":"subscribe"}`))
	assert.Equal(t, "subscribed", receiveType(t, client))
	assert.True(t, client.isSubscribed())
}

func TestWebSocketClient_UnknownMessage(t *testing.T) {
	client := newTestClient(t)

	client.handleMessage([]byte(`{"type":"bogus"}`))
	client.handleMessage([]byte(`not json`))

	assert.Empty(t, client.send)
}

func TestWebSocketServer_BroadcastHonorsSubscription(t *testing.T) {
	server := NewWebSocketServer(":0", logging.NewNoopLogger())

	subscribed := &WebSocketClient{send: make(chan []byte, 4), server: server, subscribed: true}
	unsubscribed := &WebSocketClient{send: make(chan []byte, 4), server: server, subscribed: true}
	server.registerClient(subscribed)
	server.registerClient(unsubscribed)

	unsubscribed.handleMessage([]byte(`{"type":"unsubscribe"}`))
	assert.Equal(t, "unsubscribed", receiveType(t, unsubscribed))

	server.broadcast(Report{RecommendedFeeWei: 23_900_000_000})

	var update FeeUpdateMessage
	select {
	case data := <-subscribed.send:
		require.NoError(t, json.Unmarshal(data, &update))
	default:
		t.Fatal("subscribed client should receive the update")
	}
	assert.Equal(t, "fee_update", update.Type)
	assert.Equal(t, uint64(23_900_000_000), update.Report.RecommendedFeeWei)

	assert.Empty(t, unsubscribed.send, "unsubscribed client should be skipped")
}
