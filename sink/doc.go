// Package sink defines the fire-and-forget presentation boundary. Sessions
// push generated utterances to sinks (chat bubbles, transcripts, audio cues)
// and never wait for acknowledgment; a slow or failing sink cannot stall a
// conversation. The stream subpackage broadcasts utterances to websocket
// subscribers for live viewing.
package sink
