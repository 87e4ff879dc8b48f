// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package reliability detects re-delivered EDIFACT interchanges.

Trading partners retransmit interchanges when they miss an
acknowledgement. UN/EDIFACT identifies an interchange by its sender,
recipient and interchange control reference (UNB elements 1, 2 and 4);
a second delivery with the same triple inside the detection window is a
duplicate and must not be processed again.

# Duplicate Detector

	detector := reliability.NewDuplicateDetector(24 * time.Hour)

	key := reliability.Key(order.Sender(), order.Recipient(), order.ControlReference())
	if detector.Check(key, time.Now()) {
	    // already processed
	}

Expired entries are dropped lazily by Check and in bulk by Prune. Run
prunes periodically until its context is cancelled:

	go detector.Run(ctx, time.Hour)

A zero window keeps entries forever.
*/
package reliability
