// Package messaging publishes and consumes domain events over NATS, NSQ,
// Kafka, Google Pub/Sub or an in-process broker, behind one interface.
package messaging
