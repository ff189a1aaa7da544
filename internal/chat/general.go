// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"strings"
)

// generalHandler is the fallback for messages no data intent claimed.
// It answers by keyword, with a capabilities hint as the default.
type generalHandler struct{}

func (h *generalHandler) Match(message string) (Params, bool) {
	return Params{Message: message}, true
}

func (h *generalHandler) Handle(ctx context.Context, p Params) (Response, error) {
	message := strings.ToLower(p.Message)

	switch {
	case strings.Contains(message, "help"):
		return Text("I'm here to help! You can ask me about:\n\n" +
			"**Data Insights:**\n" +
			"- 'Show me top 5 organizations with highest ghost patients'\n" +
			"- 'What is the address of Mercy General Hospital?'\n" +
			"- 'Find papers by Kahraman E'\n" +
			"- 'Show contract templates'\n" +
			"- 'What's the expected rebate for 12-month survival?'\n" +
			"- 'Patient statistics' or 'How many patients had toxicity events?'"), nil
	case strings.Contains(message, "dashboard"):
		return Text("The dashboard provides comprehensive analytics including cohort " +
			"analysis, contract simulation, and ghost radar features. You can navigate " +
			"between different sections using the sidebar."), nil
	case strings.Contains(message, "cohort"):
		return Text("The Cohort Overview shows key metrics like retention rates, " +
			"engagement scores, and patient growth. You can filter by different time " +
			"periods to analyze trends."), nil
	case strings.Contains(message, "ghost"), strings.Contains(message, "radar"):
		return Text("Ghost patients are treated patients we can see in claims data but " +
			"who never appear in an organization's reported figures. Ask me for the " +
			"top organizations by ghost patients to see where the gap is largest."), nil
	case strings.Contains(message, "contract"):
		return Text("Outcomes-based contracts rebate part of the therapy price when a " +
			"clinical outcome is not met. Ask me to 'show contract templates' or " +
			"'what's the expected rebate for 12-month survival?'"), nil
	case strings.Contains(message, "hello"), message == "hi":
		return Text("Hello! How can I assist you today?"), nil
	case strings.Contains(message, "thank"):
		return Text("You're welcome! Feel free to ask if you need anything else."), nil
	}

	return Text("I understand. Is there anything specific you'd like to know? You can ask me:\n" +
		"- 'Show me top 5 organizations with highest ghost patients'\n" +
		"- 'Show contract templates'\n" +
		"- 'What's the expected rebate for 12-month survival?'\n" +
		"- 'Patient statistics' or 'How many patients had toxicity?'"), nil
}
