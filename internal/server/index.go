package server

const indexHTML = `
<!DOCTYPE html>
<html>
  <head>
    <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
    <title>gcsim</title>
    <style type="text/css">
      body { font-family: sans-serif; }
      canvas { border: 1px solid black; }
      #controls button { min-width: 4em; }
      #status { font-family: monospace; margin: 0.5em 0; }
      #diagnostics { color: #b91c1c; font-family: monospace; }
    </style>
    <script src="https://unpkg.com/zdog@1/dist/zdog.dist.js"></script>
  </head>
  <body>
    <canvas class="gcode-view" width="600" height="600"></canvas>
    <div id="controls">
      <button data-type="backward">&#9664;</button>
      <button data-type="play">play</button>
      <button data-type="pause">pause</button>
      <button data-type="stop">stop</button>
      <button data-type="forward">&#9654;</button>
      <input id="seek" type="range" min="0" max="0" value="0">
      <select id="speed">
        <option>0.25</option><option>0.5</option><option selected>1</option>
        <option>2</option><option>5</option>
      </select>
    </div>
    <div id="status"></div>
    <div id="diagnostics"></div>
    <script type="text/javascript">
let displaySize = 600;

let gcodeView = document.querySelector(".gcode-view")

let illo = new Zdog.Illustration({
  element: gcodeView,
  scale: {x: 1.0, y: -1.0, z: 1.0},
  rotate: {x: 1.1, y: 0, z: -0.3},
  zoom: 30,
});

gcodeView.onwheel = function(event) {
  illo.zoom += (event.deltaY * 0.1)
  if (illo.zoom < 1.0) {
    illo.zoom = 1.0
  }
  animate()
}

let dragStartRX, dragStartRZ;
let isDragging = false;

new Zdog.Dragger({
  startElement: gcodeView,
  onDragStart: function() {
    dragStartRX = illo.rotate.x;
    dragStartRZ = illo.rotate.z;
    isDragging = true;
    animate();
  },
  onDragMove: function( pointer, moveX, moveY ) {
    illo.rotate.x = dragStartRX - ( moveY / displaySize * Zdog.TAU );
    illo.rotate.z = dragStartRZ - ( moveX / displaySize * Zdog.TAU );
  },
  onDragEnd: function () {
    isDragging = false;
  },
});

const colors = {
  rapid: {executed: 'red', pending: '#fecaca'},
  feed: {executed: 'green', pending: '#d1d5db'},
}

let workspace = null
let shapes = []
let tool = null
let boundary = 0

function point(pos) {
  return {x: pos.x, y: pos.y, z: pos.z}
}

function drawBox(b) {
  new Zdog.Shape({
    addTo: workspace,
    stroke: 0.01,
    color: 'grey',
    path: [
      {x: b.min.x, y: b.min.y, z: b.min.z},
      {x: b.max.x, y: b.min.y, z: b.min.z},
      {x: b.max.x, y: b.max.y, z: b.min.z},
      {x: b.min.x, y: b.max.y, z: b.min.z},
      {x: b.min.x, y: b.min.y, z: b.min.z},
      {move: {x: b.min.x, y: b.min.y, z: b.max.z}},
      {x: b.max.x, y: b.min.y, z: b.max.z},
      {x: b.max.x, y: b.max.y, z: b.max.z},
      {x: b.min.x, y: b.max.y, z: b.max.z},
      {x: b.min.x, y: b.min.y, z: b.max.z},
    ],
  })
}

function drawAxes() {
  for (const [axis, color] of [['x', 'red'], ['y', 'green'], ['z', 'blue']]) {
    let from = {x: 0, y: 0, z: 0}, to = {x: 0, y: 0, z: 0}
    from[axis] = -1
    to[axis] = 1
    new Zdog.Shape({addTo: workspace, stroke: 0.1, color: color, path: [from, to]})
  }
}

function commandColor(n) {
  const c = shapes[n].rapid ? colors.rapid : colors.feed
  return n < boundary ? c.executed : c.pending
}

function loadProgram(p) {
  if (workspace !== null) {
    workspace.remove()
  }
  document.title = (p.path || "gcsim") + " rev " + p.revision

  let size = 12, center = {x: 0, y: 0, z: 0}
  if (p.bounds !== null) {
    size = Math.max(p.bounds.max.x - p.bounds.min.x, p.bounds.max.y - p.bounds.min.y, 1)
    center = {
      x: (p.bounds.min.x + p.bounds.max.x) / 2,
      y: (p.bounds.min.y + p.bounds.max.y) / 2,
      z: (p.bounds.min.z + p.bounds.max.z) / 2,
    }
  }
  illo.zoom = 12 * 30 / size

  workspace = new Zdog.Anchor({
    addTo: illo,
    translate: {x: -center.x, y: -center.y, z: -center.z},
  })
  if (p.bounds !== null) {
    drawBox(p.bounds)
  }
  drawAxes()

  shapes = []
  boundary = 0
  for (const cmd of p.commands) {
    let path = [point(cmd.start)]
    for (const pt of (cmd.points || [cmd.end])) {
      path.push(point(pt))
    }
    const shape = new Zdog.Shape({
      addTo: workspace,
      stroke: 0.02,
      closed: false,
      path: path,
    })
    shape.rapid = cmd.kind === "rapid"
    shapes.push(shape)
  }
  for (let n = 0; n < shapes.length; n++) {
    shapes[n].color = commandColor(n)
  }

  tool = new Zdog.Shape({
    addTo: workspace,
    stroke: 0.3,
    color: 'orange',
    translate: point(p.initial),
  })

  document.getElementById("seek").max = p.commands.length
  let diags = document.getElementById("diagnostics")
  diags.textContent = ""
  for (const d of p.diagnostics) {
    let div = document.createElement("div")
    div.textContent = d.line + ": " + d.kind + ": " + d.text
    diags.appendChild(div)
  }
  animate()
}

function showSnapshot(snap) {
  const from = Math.min(boundary, snap.index), to = Math.max(boundary, snap.index)
  boundary = snap.index
  for (let n = from; n < to && n < shapes.length; n++) {
    shapes[n].color = commandColor(n)
  }
  if (tool !== null) {
    tool.translate = new Zdog.Vector(point(snap.state.position))
  }

  const st = snap.state
  document.getElementById("seek").value = snap.index
  document.getElementById("status").textContent = snap.status + " " + snap.index + "/" +
    snap.total + " x" + snap.speed + "  X" + st.position.x.toFixed(3) + " Y" +
    st.position.y.toFixed(3) + " Z" + st.position.z.toFixed(3) + "  F" + st.feed + " S" +
    st.spindleSpeed + (st.spindleOn ? (st.spindleClockwise ? " M3" : " M4") : " M5") +
    " T" + st.tool + (st.coolantOn ? " coolant" : "") +
    (snap.current ? "  line " + snap.current.line : "")
  animate()
}

const conn = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") +
  location.host + "/ws")

function send(msg) {
  conn.send(JSON.stringify(msg))
}

conn.onmessage = function(event) {
  const msg = JSON.parse(event.data)
  if (msg.type === "program") {
    loadProgram(msg.payload)
  } else if (msg.type === "snapshot") {
    showSnapshot(msg.payload)
  } else if (msg.type === "error") {
    console.log("error: ", msg.payload.code, msg.payload.message)
  }
}

for (const button of document.querySelectorAll("#controls button")) {
  button.onclick = function() {
    send({type: button.dataset.type})
  }
}
document.getElementById("seek").oninput = function(event) {
  send({type: "seek", index: Number(event.target.value)})
}
document.getElementById("speed").onchange = function(event) {
  send({type: "speed", speed: Number(event.target.value)})
}

function animate() {
  illo.updateRenderGraph()
  if (isDragging) {
    requestAnimationFrame(animate)
  }
}
animate();
    </script>
 </body>
</html>
`
