package reload

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browserShim fakes the handful of browser globals the client touches.
const browserShim = `
var sockets = [];
var timers = [];
var reloads = 0;
var calls = { clear: 0, group: [], log: 0, groupEnd: 0, warn: 0 };

function WebSocket(url) {
  this.url = url;
  this.closed = false;
  this.listeners = {};
  sockets.push(this);
}
WebSocket.prototype.addEventListener = function (type, fn) {
  (this.listeners[type] = this.listeners[type] || []).push(fn);
};
WebSocket.prototype.emit = function (type, event) {
  (this.listeners[type] || []).forEach(function (fn) { fn(event || {}); });
};
WebSocket.prototype.close = function () {
  if (this.closed) { return; }
  this.closed = true;
  this.emit('close', { reason: '' });
};

function setTimeout(fn, ms) { timers.push({ fn: fn, ms: ms }); }

var location = { reload: function () { reloads++; } };
var console = {
  clear: function () { calls.clear++; },
  group: function (label) { calls.group.push(label); },
  log: function () { calls.log++; },
  groupEnd: function () { calls.groupEnd++; },
  warn: function () { calls.warn++; }
};
var GM_info = { script: { name: 'Test Script', version: '1.2.3' } };
`

func newBrowser(t *testing.T) *goja.Runtime {
	t.Helper()
	vm := goja.New()
	_, err := vm.RunString(browserShim)
	require.NoError(t, err)
	_, err = vm.RunString(ClientScript("ws://localhost:4321"))
	require.NoError(t, err)
	return vm
}

func eval(t *testing.T, vm *goja.Runtime, src string) goja.Value {
	t.Helper()
	v, err := vm.RunString(src)
	require.NoError(t, err)
	return v
}

func TestClientScriptSubstitution(t *testing.T) {
	js := ClientScript("ws://localhost:9999")
	assert.Contains(t, js, "'ws://localhost:9999'")
	assert.Contains(t, js, "var delay = 1000;")
	assert.NotContains(t, js, "__WS__")
	assert.NotContains(t, js, "__DELAY__")
}

func TestClientDialsOnLoad(t *testing.T) {
	vm := newBrowser(t)
	assert.EqualValues(t, 1, eval(t, vm, "sockets.length").ToInteger())
	assert.Equal(t, "ws://localhost:4321", eval(t, vm, "sockets[0].url").String())
}

func TestClientOpenPrintsScriptInfo(t *testing.T) {
	vm := newBrowser(t)
	eval(t, vm, "sockets[0].emit('open')")

	assert.EqualValues(t, 1, eval(t, vm, "calls.clear").ToInteger())
	assert.Equal(t, "Test Script@1.2.3", eval(t, vm, "calls.group[0]").String())
	assert.EqualValues(t, 1, eval(t, vm, "calls.log").ToInteger())
	assert.EqualValues(t, 1, eval(t, vm, "calls.groupEnd").ToInteger())
	assert.EqualValues(t, 0, eval(t, vm, "reloads").ToInteger())
}

func TestClientMessageReloads(t *testing.T) {
	vm := newBrowser(t)
	eval(t, vm, "sockets[0].emit('message', { data: '{\"message\":\"reload\"}' })")
	assert.EqualValues(t, 1, eval(t, vm, "reloads").ToInteger())
}

func TestClientReconnectsAfterClose(t *testing.T) {
	vm := newBrowser(t)
	eval(t, vm, "sockets[0].close()")

	assert.EqualValues(t, 1, eval(t, vm, "calls.warn").ToInteger())
	require.EqualValues(t, 1, eval(t, vm, "timers.length").ToInteger())
	assert.EqualValues(t, 1000, eval(t, vm, "timers[0].ms").ToInteger())
	assert.EqualValues(t, 1, eval(t, vm, "sockets.length").ToInteger(), "no dial before the timer fires")

	eval(t, vm, "timers[0].fn()")
	assert.EqualValues(t, 2, eval(t, vm, "sockets.length").ToInteger())
	assert.Equal(t, "ws://localhost:4321", eval(t, vm, "sockets[1].url").String())
}

func TestClientErrorClosesSocket(t *testing.T) {
	vm := newBrowser(t)
	eval(t, vm, "sockets[0].emit('error')")

	assert.True(t, eval(t, vm, "sockets[0].closed").ToBoolean())
	assert.EqualValues(t, 1, eval(t, vm, "timers.length").ToInteger(), "error leads to exactly one reconnect")
}
