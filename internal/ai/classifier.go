package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"shop-agent/internal/core"
)

const systemPrompt = `You are a multilingual business assistant (Hindi/English) for a small shop.
You turn each user message into exactly ONE JSON object describing a business action.

You must detect:
- Purchases (stock increases)
- Sales (stock decreases)
- Mixed operations in one message (for example "10 maal aaya aur 2 bik gaye")
- Profit-relevant fields (purchase price and selling price)
- Customer and supplier mentions
- Report and insight requests

ALLOWED INTENTS:
add_stock, reduce_stock, update_stock, check_stock, low_stock_check,
purchase_entry, supplier_add, sales_entry, mixed_transaction,
create_invoice, add_customer, get_customers, get_customer_profile,
add_finance, get_finance, add_task, get_tasks,
add_service, update_service, get_service_status,
profit_report, sales_report, purchase_report, daily_report,
weekly_report, suggestions, general_chat

OUTPUT FORMAT (mandatory, nothing else):
{"intent": "", "data": {}, "reply": "", "voice_reply": false}

DATA RULES:
purchase_entry: {"supplier","product","quantity","price_each","notes"}
sales_entry: {"customer","product","quantity","selling_price","notes"}
add_stock: {"product","quantity","purchase_price"}
reduce_stock: {"product","quantity"}
mixed_transaction: {"purchases":[...purchase_entry data...],"sales":[...sales_entry data...]}
create_invoice: {"customer","items":[{"product","quantity","price"}],"tax_rate","discount","paid"}
add_service: {"customer","device","problem","technician","cost"}
update_service: {"service_id","status","cost"}
add_finance: {"customer","amount","type","notes"} where type is income or expense
add_task: {"task","assigned_to"}

If the user asks for voice/bolo/sunao/audio, set voice_reply to true.
Keep replies SHORT. Detect the user's language and reply in that language.`

// Classifier turns one utterance plus bounded history into a
// structured intent classification.
type Classifier interface {
	Classify(ctx context.Context, text string, history []core.MemoryEntry) (*core.Classification, error)
}

type classifier struct {
	client *openai.Client
	model  string
}

// NewClassifier builds a Classifier against the OpenAI Responses API.
// An empty model falls back to GPT-4o.
func NewClassifier(apiKey, model string) Classifier {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	return &classifier{client: &client, model: model}
}

func (c *classifier) Classify(ctx context.Context, text string, history []core.MemoryEntry) (*core.Classification, error) {
	prompt := systemPrompt
	if mem := renderHistory(history); mem != "" {
		prompt += "\n\nConversation memory (most recent turns):\n" + mem
	}
	prompt += "\n\nUser message: " + text

	schemaMap, err := classificationSchema()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "business_action",
					Schema:      schemaMap,
					Description: param.NewOpt("One classified business action for the shop assistant"),
				},
			},
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}
	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}
	return ParseClassification(content), nil
}

// ParseClassification turns raw model output into a Classification.
// It never fails: non-JSON output, or output the schema did not
// actually constrain, degrades to general_chat carrying the raw text
// as the reply. Unknown intents also fold to general_chat.
func ParseClassification(raw string) *core.Classification {
	var cls core.Classification
	if err := json.Unmarshal([]byte(raw), &cls); err != nil {
		// Models sometimes wrap the object in prose; take the widest
		// brace span and retry.
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end <= start || json.Unmarshal([]byte(raw[start:end+1]), &cls) != nil {
			return &core.Classification{
				Intent: core.IntentGeneralChat,
				Data:   map[string]any{},
				Reply:  raw,
			}
		}
	}
	if !core.KnownIntent(cls.Intent) {
		cls.Intent = core.IntentGeneralChat
	}
	if cls.Data == nil {
		cls.Data = map[string]any{}
	}
	return &cls
}

func renderHistory(history []core.MemoryEntry) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func classificationSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var v core.Classification
	schemaJSON, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}
