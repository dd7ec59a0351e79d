package n8n

import (
	"encoding/json"
	"strings"
)

const mockWorkflows = `{"data":[{
	"id":"1",
	"name":"E-commerce Order Processing",
	"active":true,
	"createdAt":"2024-01-15T10:00:00.000Z",
	"updatedAt":"2024-01-30T14:30:00.000Z",
	"nodes":[
		{"name":"Shopify Trigger","type":"n8n-nodes-base.shopifyTrigger"},
		{"name":"Process Order","type":"n8n-nodes-base.function"}
	],
	"connections":{},
	"settings":{}
}]}`

const mockExecutions = `{"data":[{
	"id":"exec-1",
	"workflowId":"1",
	"status":"success",
	"startedAt":"2024-01-30T16:30:00.000Z",
	"stoppedAt":"2024-01-30T16:30:02.000Z",
	"mode":"webhook"
}]}`

// mockResponse picks the canned payload served while n8n is unreachable.
func mockResponse(path string) json.RawMessage {
	switch {
	case strings.Contains(path, "workflows"):
		return json.RawMessage(mockWorkflows)
	case strings.Contains(path, "executions"):
		return json.RawMessage(mockExecutions)
	default:
		return json.RawMessage(`{"data":[]}`)
	}
}
