package web

// Single-page dashboard: balance table fed by the SSE stream plus a price
// table loaded from the JSON endpoint.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>hodlboard</title>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --ink-soft:#9c9c9c;
      --panel:#f6f6f6;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      width:min(1100px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:flex;
      flex-direction:column;
      gap:2rem;
    }
    header { display:flex; justify-content:space-between; align-items:flex-start; gap:1rem; }
    h1 {
      font-size:1rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      margin:0;
    }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#ffffff;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    table {
      width:100%;
      border-collapse:collapse;
      background:#fff;
      border:2px solid var(--ink);
      font-size:.75rem;
    }
    th, td {
      border:1px solid var(--ink-soft);
      padding:.5rem .8rem;
      text-align:right;
    }
    th { background:var(--panel); text-transform:uppercase; letter-spacing:.08em; }
    th:first-child, td:first-child { text-align:left; font-weight:700; }
    .section-title {
      font-size:.7rem;
      text-transform:uppercase;
      letter-spacing:.18em;
      color:var(--ink-mid);
      margin:0 0 .6rem 0;
    }
    .empty-state {
      border:2px dashed var(--ink-soft);
      padding:2rem;
      text-align:center;
      font-size:.8rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      color:var(--ink-mid);
    }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <h1>hodlboard</h1>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <section>
      <p class="section-title">Balances</p>
      <div id="balances"><div class="empty-state">Waiting for balance snapshots…</div></div>
    </section>
    <section>
      <p class="section-title">Daily prices</p>
      <div id="prices"><div class="empty-state">Loading…</div></div>
    </section>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const balancesEl = document.getElementById('balances');
const pricesEl = document.getElementById('prices');

function renderBalances(snapshot){
  if(!snapshot || !snapshot.rows || !snapshot.rows.length){ return; }
  const table = document.createElement('table');
  const head = document.createElement('tr');
  ['Asset'].concat(snapshot.columns || [], ['Total']).forEach((c) => {
    const th = document.createElement('th');
    th.textContent = c;
    head.appendChild(th);
  });
  table.appendChild(head);
  snapshot.rows.forEach((row) => {
    const tr = document.createElement('tr');
    const name = document.createElement('td');
    name.textContent = row.asset;
    tr.appendChild(name);
    (snapshot.columns || []).forEach((c) => {
      const td = document.createElement('td');
      td.textContent = (row.cells && row.cells[c]) || '';
      tr.appendChild(td);
    });
    const total = document.createElement('td');
    total.textContent = row.total;
    tr.appendChild(total);
    table.appendChild(tr);
  });
  balancesEl.replaceChildren(table);
}

function renderPrices(snapshot){
  if(!snapshot || !snapshot.columns || !snapshot.columns.length){ return; }
  const days = Object.keys(snapshot.rows || {}).sort().reverse().slice(0, 14);
  const table = document.createElement('table');
  const head = document.createElement('tr');
  ['Date'].concat(snapshot.columns).forEach((c) => {
    const th = document.createElement('th');
    th.textContent = c;
    head.appendChild(th);
  });
  table.appendChild(head);
  days.forEach((day) => {
    const tr = document.createElement('tr');
    const name = document.createElement('td');
    name.textContent = day;
    tr.appendChild(name);
    snapshot.columns.forEach((c) => {
      const td = document.createElement('td');
      td.textContent = (snapshot.rows[day] && snapshot.rows[day][c]) || '';
      tr.appendChild(td);
    });
    table.appendChild(tr);
  });
  pricesEl.replaceChildren(table);
}

function connectSSE(){
  const source = new EventSource('/balances/stream');
  statusEl.textContent = 'Status: receiving data';
  source.addEventListener('balances', (event) => {
    try{
      renderBalances(JSON.parse(event.data));
    }catch(err){
      console.error('payload parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

function loadPrices(){
  fetch('/api/prices')
    .then((resp) => resp.json())
    .then(renderPrices)
    .catch((err) => console.error('prices load', err));
}

connectSSE();
loadPrices();
setInterval(loadPrices, 60000);
</script>
</body>
</html>`
