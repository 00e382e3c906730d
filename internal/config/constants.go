package config

import (
	"fmt"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	// Upper bound for one streamed assistant reply
	StreamTimeout = 90 * time.Second

	// Recommendation lookups attached to a finalized reply
	RecommendationTimeout = 20 * time.Second
	MaxRecommendations    = 6

	// Catalog cache duration
	CatalogCacheDuration = 5 * time.Minute

	// Messages sent to the chat model as history
	HistoryWindow = 20

	// Quote line limits
	MinItemQuantity = 1
	MaxItemQuantity = 10000

	// Gate lease in redis; outlives StreamTimeout so a crashed replica cannot hold a session forever
	GateLease = StreamTimeout + 30*time.Second

	// Pool sizing
	MaxDBConns = 20
	MinDBConns = 5

	ShutdownTimeout = 10 * time.Second

	ApologyMessage = "Sorry, I encountered an error. Please try again."
)

// DefaultTriggerKeywords decide when a finished reply fetches product recommendations.
var DefaultTriggerKeywords = []string{"recommend", "suggest", "product", "need", "looking for"}

func WelcomeMessage(categoryName string) string {
	return fmt.Sprintf("Welcome to your %s audio-visual consultation! I'm here to help you find the perfect solutions for your needs. What would you like to know about?", categoryName)
}

func AddedToQuoteMessage(productName string) string {
	return fmt.Sprintf("Great! I've added \"%s\" to your quote. You can review your quote below.", productName)
}

func SystemPrompt(categoryName, categoryDescription string) string {
	return fmt.Sprintf(`You are an expert audio-visual consultant helping a customer in the %s market (%s).
Ask clarifying questions about the space, audience size, budget and existing equipment.
When you have enough detail, recommend concrete product types and explain why.
Keep answers concise and friendly. Never invent prices; the catalog provides them.`, categoryName, categoryDescription)
}
