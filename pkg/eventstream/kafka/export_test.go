package kafka

var NewPublisherWithWriter = newPublisher
