// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcputil

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrorResult creates a standardized MCP error result.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// SuccessResult creates a standardized MCP success result.
func SuccessResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: false,
	}
}

// SuccessResultWithPayload creates a success result that also returns a
// structured payload, the common pattern for step tools that report what
// they produced.
//
// Example usage:
//
//	result, payload := mcputil.SuccessResultWithPayload("Cataloged 2 platforms", descriptors)
//	return result, payload, nil
func SuccessResultWithPayload(message string, payload any) (*mcp.CallToolResult, any) {
	return SuccessResult(message), payload
}
