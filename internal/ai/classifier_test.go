package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shop-agent/internal/core"
)

func TestParseClassificationValidJSON(t *testing.T) {
	cls := ParseClassification(`{"intent":"sales_entry","data":{"product":"Pen","quantity":"3"},"reply":"Done","voice_reply":true}`)
	assert.Equal(t, core.IntentSalesEntry, cls.Intent)
	assert.Equal(t, "Pen", cls.Data["product"])
	assert.Equal(t, "Done", cls.Reply)
	assert.True(t, cls.VoiceReply)
}

func TestParseClassificationWrappedInProse(t *testing.T) {
	raw := "Sure! Here is the action:\n{\"intent\":\"check_stock\",\"data\":{},\"reply\":\"ok\",\"voice_reply\":false}\nLet me know."
	cls := ParseClassification(raw)
	assert.Equal(t, core.IntentCheckStock, cls.Intent)
	assert.Equal(t, "ok", cls.Reply)
}

func TestParseClassificationGarbageDegradesToChat(t *testing.T) {
	raw := "I am not JSON at all"
	cls := ParseClassification(raw)
	assert.Equal(t, core.IntentGeneralChat, cls.Intent)
	assert.Equal(t, raw, cls.Reply, "raw text becomes the reply")
	assert.NotNil(t, cls.Data)
}

func TestParseClassificationUnknownIntentFolds(t *testing.T) {
	cls := ParseClassification(`{"intent":"order_pizza","data":{},"reply":"hmm","voice_reply":false}`)
	assert.Equal(t, core.IntentGeneralChat, cls.Intent)
	assert.Equal(t, "hmm", cls.Reply)
}

func TestParseClassificationNilDataInitialized(t *testing.T) {
	cls := ParseClassification(`{"intent":"get_customers","reply":""}`)
	assert.NotNil(t, cls.Data)
}
