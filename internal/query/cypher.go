package query

const userActivityCypher = `
MATCH (u:User {id: $id})
OPTIONAL MATCH (u)-[:MADE_TRANSACTION]->(t:Transaction)
RETURN u.id AS id,
       count(t) AS txCount,
       coalesce(sum(t.amount), 0.0) AS totalValue
`

const userNeighborhoodCypher = `
MATCH (u:User {id: $id})

OPTIONAL MATCH (u)-[:MADE_TRANSACTION]->(t:Transaction)
WITH u, collect(DISTINCT t {.*})[0..$txLimit] AS txs

OPTIONAL MATCH (u)-[sent:SENT_MONEY_TO]->(recipient:User)
WITH u, txs,
     collect(DISTINCT {user: recipient {.*}, type: 'SENT_MONEY_TO',
                       amount: sent.amount, currency: sent.currency,
                       transactionId: sent.transactionId,
                       timestamp: sent.timestamp})[0..$relLimit] AS sentTo

OPTIONAL MATCH (u)-[received:RECEIVED_MONEY_FROM]->(sender:User)
WITH u, txs, sentTo,
     collect(DISTINCT {user: sender {.*}, type: 'RECEIVED_MONEY_FROM',
                       amount: received.amount, currency: received.currency,
                       transactionId: received.transactionId,
                       timestamp: received.timestamp})[0..$relLimit] AS receivedFrom

OPTIONAL MATCH (u)-[s:SHARES_EMAIL|SHARES_PHONE|SHARES_ADDRESS|FAMILY_MEMBER|BUSINESS_PARTNER]-(shared:User)
WITH u, txs, sentTo, receivedFrom,
     collect(DISTINCT {user: shared {.*}, type: type(s),
                       sharedValue: coalesce(s.value, '')})[0..$relLimit] AS sharedLinks

OPTIONAL MATCH (u)-[:MADE_TRANSACTION]->(t1:Transaction)-[n:SAME_IP|SAME_DEVICE]-(t2:Transaction)<-[:MADE_TRANSACTION]-(other:User)
WHERE other.id <> u.id
WITH u, txs, sentTo, receivedFrom, sharedLinks,
     collect(DISTINCT {user: other {.*}, type: type(n),
                       sharedValue: coalesce(n.ipAddress, n.deviceId, '')})[0..$relLimit] AS networkLinks

RETURN u {.*} AS user, txs, sentTo, receivedFrom, sharedLinks, networkLinks
`

const secondDegreeMoneyCypher = `
MATCH (u:User {id: $id})-[:SENT_MONEY_TO|RECEIVED_MONEY_FROM]-(mid:User)-[far:SENT_MONEY_TO]->(peer:User)
WHERE peer.id <> u.id AND mid.id <> u.id
WITH DISTINCT peer, mid, far
LIMIT $relLimit
RETURN collect({user: peer {.*}, type: 'SENT_MONEY_TO', via: mid.id,
                amount: far.amount, currency: far.currency,
                transactionId: far.transactionId,
                timestamp: far.timestamp}) AS links
`

const transactionNeighborhoodCypher = `
MATCH (t:Transaction {id: $id})

OPTIONAL MATCH (origin:User)-[:MADE_TRANSACTION]->(t)
OPTIONAL MATCH (dest:User)-[:RECEIVED_TRANSACTION]->(t)
WITH t, origin, dest

OPTIONAL MATCH (t)-[l:SAME_IP|SAME_DEVICE|TEMPORAL_LINK|AMOUNT_PATTERN]-(lt:Transaction)
WITH t, origin, dest,
     collect(DISTINCT {tx: lt {.*}, type: type(l),
                       sharedValue: coalesce(l.ipAddress, l.deviceId, ''),
                       confidence: coalesce(l.confidence, l.similarity, 0.0)})[0..$linkLimit] AS linked

RETURN t {.*} AS tx, origin {.*} AS origin, dest {.*} AS dest, linked
`

const shortestPathCypher = `
MATCH (start:User {id: $sourceId}), (end:User {id: $targetId})
MATCH path = shortestPath((start)-[*..6]-(end))
RETURN
  [n IN nodes(path) | {
    id: coalesce(n.id, 'node-' + toString(id(n))),
    kind: CASE WHEN n:Transaction THEN 'transaction' WHEN n:User THEN 'user' ELSE 'other' END,
    name: coalesce(n.name, '')
  }] AS nodes,
  [r IN relationships(path) | {
    start: coalesce(startNode(r).id, 'node-' + toString(id(startNode(r)))),
    end: coalesce(endNode(r).id, 'node-' + toString(id(endNode(r)))),
    type: type(r)
  }] AS edges,
  length(path) AS hops
`
