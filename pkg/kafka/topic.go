package kafka

import "strings"

// TopicPrefix namespaces every topic this service publishes to.
const TopicPrefix = "storefront"

// Topic builds a topic name of the form storefront.<aggregate>.<action>.
func Topic(aggregate, action string) string {
	return strings.Join([]string{TopicPrefix, aggregate, action}, ".")
}
