// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package websocket exposes ingestion progress events over WebSocket.
//
// Each accepted connection receives an initial "connected" event, then a
// live feed of progress, batch_completed, and batch_error events from the
// in-process broadcaster, interleaved with periodic heartbeat events. A
// connection that cannot keep up is evicted by the broadcaster and its
// socket closed; clients are expected to reconnect. The feed is one-way:
// inbound messages are read only to detect connection close.
package websocket
