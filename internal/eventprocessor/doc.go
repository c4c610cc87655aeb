// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package eventprocessor carries wardrobe feedback over NATS JetStream.

Clients publish FeedbackMessage values (outfit signals, worn confirmations
and item signals) to the feedback topic. A Watermill router consumes them
and applies each one to the recommendation engine, which updates item EMA
scores and appends to the feedback log that training later reads.

# Architecture

	client --PublishFeedback--> JetStream (THREAD_FEEDBACK, feedback.>)
	                                 |
	                     Subscriber (durable, bound)
	                                 |
	      Router: PoisonQueue > Retry > PoisonQueue(permanent) > Recoverer
	                                 |
	                FeedbackHandler --> recommend.Engine

# Delivery Semantics

JetStream delivers at least once. FeedbackHandler remembers processed
event ids in an LRU, so a redelivered event does not apply its EMA update
twice. Publishers set Nats-Msg-Id to the event id, letting the stream drop
duplicate publishes inside its duplicate window.

Malformed payloads, unknown signals and references to missing outfits or
items are permanent failures and go straight to the poison topic. Other
errors are retried with exponential backoff before being poisoned.

# Usage

FeedbackConsumer assembles the pipeline and can be restarted by a supervisor:

	consumer, err := eventprocessor.NewFeedbackConsumer(cfg, engine, nil)
	if err != nil {
	    return err
	}
	if err := consumer.Start(ctx); err != nil {
	    return err
	}
	defer consumer.Shutdown(context.Background())

The pieces can also be wired by hand:

	nc, js, err := eventprocessor.ConnectJetStream(cfg.URL)
	streams, _ := eventprocessor.NewStreamInitializer(js, &cfg.Stream)
	if _, err := streams.EnsureStream(ctx); err != nil {
	    return err
	}

	sub, _ := eventprocessor.NewSubscriber(&cfg.Subscriber, logger)
	poison, _ := eventprocessor.NewPublisher(cfg.Publisher, cfg.Router.PoisonQueueTopic, logger)
	router, _ := eventprocessor.NewRouter(&cfg.Router, poison.Guarded(), logger)

	handler, _ := eventprocessor.NewFeedbackHandler(engine, cfg.DedupCapacity, cfg.DedupTTL)
	router.AddConsumerHandler("feedback", cfg.Topic, sub, handler.Handle)
	return router.Run(ctx)
*/
package eventprocessor
